/*
Package adminauth decides whether a signed-in user may use the admin
area. Two sources are consulted: the role table, and a static allow-list
of operator emails. The allow-list keeps known operators in even when the
role lookup is failing, so a listed email is enough on its own.

	| Role lookup | Allow-listed | Outcome       |
	|-------------|--------------|---------------|
	| true        | any          | Granted       |
	| false       | true         | Granted       |
	| false       | false        | Denied        |
	| error       | true         | Granted       |
	| error       | false        | Indeterminate |

Indeterminate is treated as Denied by callers but reported as a
permission error rather than a plain refusal.
*/
package adminauth

import (
	"log/slog"
	"strings"

	"github.com/adampresley/photoportfolio/pkg/models"
)

type Outcome int

const (
	Denied Outcome = iota
	Granted
	Indeterminate
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Indeterminate:
		return "indeterminate"
	default:
		return "denied"
	}
}

/*
Decide applies the decision table. roleGranted is ignored when roleErr
is not nil.
*/
func Decide(roleGranted bool, roleErr error, allowListed bool) Outcome {
	switch {
	case roleErr != nil && allowListed:
		return Granted
	case roleErr != nil:
		return Indeterminate
	case roleGranted:
		return Granted
	case allowListed:
		return Granted
	default:
		return Denied
	}
}

type RoleChecker interface {
	HasRole(userID, role string) (bool, error)
}

type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) AllowList {
	result := AllowList{
		emails: map[string]struct{}{},
	}

	for _, email := range emails {
		if normalized := normalizeEmail(email); normalized != "" {
			result.emails[normalized] = struct{}{}
		}
	}

	return result
}

/*
ParseAllowList reads a comma separated list of emails, such as the
value of the ADMIN_EMAILS setting.
*/
func ParseAllowList(raw string) AllowList {
	return NewAllowList(strings.Split(raw, ","))
}

func (a AllowList) Contains(email string) bool {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return false
	}

	_, ok := a.emails[normalized]
	return ok
}

func (a AllowList) Len() int {
	return len(a.emails)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Decision struct {
	Outcome     Outcome
	RoleErr     error
	AllowListed bool
}

func (d Decision) Allowed() bool {
	return d.Outcome == Granted
}

type CheckerConfig struct {
	AllowList AllowList
	Role      string
	Roles     RoleChecker
}

type Checker struct {
	allowList AllowList
	role      string
	roles     RoleChecker
}

func NewChecker(config CheckerConfig) Checker {
	if config.Role == "" {
		config.Role = models.RoleAdmin
	}

	return Checker{
		allowList: config.AllowList,
		role:      config.Role,
		roles:     config.Roles,
	}
}

/*
Check decides access for user. A nil user, meaning nobody is signed in,
is Denied without consulting the role table.
*/
func (c Checker) Check(user *models.User) Decision {
	var (
		err         error
		roleGranted bool
	)

	if user == nil || user.ID == "" {
		return Decision{Outcome: Denied}
	}

	allowListed := c.allowList.Contains(user.Email)

	if c.roles != nil {
		roleGranted, err = c.roles.HasRole(user.ID, c.role)
	}

	result := Decision{
		Outcome:     Decide(roleGranted, err, allowListed),
		RoleErr:     err,
		AllowListed: allowListed,
	}

	if err != nil {
		if result.Outcome == Granted {
			slog.Warn("role lookup failed, access granted through the email allow-list", "error", err, "userID", user.ID)
		} else {
			slog.Warn("role lookup failed, access could not be confirmed", "error", err, "userID", user.ID, "outcome", result.Outcome.String())
		}
	}

	return result
}
