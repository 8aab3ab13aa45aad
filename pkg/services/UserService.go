package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
	"golang.org/x/crypto/bcrypt"
)

type UserServicer interface {
	SignUp(email, password string) (*models.User, error)
	SignIn(email, password string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	HasRole(userID, role string) (bool, error)
	GrantRole(email, role string) error
	RevokeRole(email, role string) error
}

type UserServiceConfig struct {
	DB *sqlz.DB
}

type UserService struct {
	db *sqlz.DB
}

func NewUserService(config UserServiceConfig) UserService {
	return UserService{
		db: config.DB,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s UserService) SignUp(email, password string) (*models.User, error) {
	var (
		err  error
		hash []byte
	)

	email = normalizeEmail(email)

	if _, err = s.GetByEmail(email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	if hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	result := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	sql := `
INSERT INTO users (
   id
   , email
   , password_hash
   , created_at
) VALUES (?, ?, ?, ?)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, result.ID, result.Email, result.PasswordHash, result.CreatedAt); err != nil {
		return nil, fmt.Errorf("error inserting user '%s': %w", email, err)
	}

	return result, nil
}

/*
SignIn verifies a password. Unknown emails and wrong passwords both
return ErrInvalidCredentials.
*/
func (s UserService) SignIn(email, password string) (*models.User, error) {
	var (
		err  error
		user *models.User
	)

	if user, err = s.GetByEmail(email); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}

		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

func (s UserService) GetByEmail(email string) (*models.User, error) {
	var (
		err error
	)

	result := &models.User{}

	sql := `
SELECT
   u.id
   , u.email
   , u.password_hash
   , u.created_at
FROM users AS u
WHERE 1=1
   AND u.email=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, normalizeEmail(email)); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrUserNotFound
		}

		return nil, fmt.Errorf("error querying for user '%s': %w", email, err)
	}

	return result, nil
}

func (s UserService) HasRole(userID, role string) (bool, error) {
	var (
		err    error
		result struct {
			RoleCount int `db:"role_count"`
		}
	)

	sql := `
SELECT COUNT(*) AS role_count
FROM user_roles
WHERE 1=1
   AND user_id=?
   AND role=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, userID, role); err != nil {
		return false, fmt.Errorf("error checking role '%s' for user %s: %w", role, userID, err)
	}

	return result.RoleCount > 0, nil
}

func (s UserService) GrantRole(email, role string) error {
	var (
		err  error
		user *models.User
	)

	if user, err = s.GetByEmail(email); err != nil {
		return err
	}

	sql := `
INSERT INTO user_roles (user_id, role) VALUES (?, ?)
ON CONFLICT (user_id, role) DO NOTHING
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, user.ID, role); err != nil {
		return fmt.Errorf("error granting role '%s' to '%s': %w", role, email, err)
	}

	return nil
}

func (s UserService) RevokeRole(email, role string) error {
	var (
		err  error
		user *models.User
	)

	if user, err = s.GetByEmail(email); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id=? AND role=?`, user.ID, role); err != nil {
		return fmt.Errorf("error revoking role '%s' from '%s': %w", role, email, err)
	}

	return nil
}
