package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/photoportfolio/pkg/models"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	JavascriptIncludes []rendering.JavascriptInclude
	SiteName           string
	User               *models.User
	StorageConfigured  bool
}

/*
GetUserFromContext returns the signed-in user placed in the request
context by the admin middleware, or nil.
*/
func GetUserFromContext(r *http.Request) *models.User {
	if result, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return result
	}

	return nil
}
