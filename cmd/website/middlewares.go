package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/adampresley/photoportfolio/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoportfolio/pkg/adminauth"
	"github.com/adampresley/photoportfolio/pkg/models"
)

type userSession interface {
	Get(r *http.Request) (*models.User, error)
}

type adminChecker interface {
	Check(user *models.User) adminauth.Decision
}

type deniedHandler func(w http.ResponseWriter, r *http.Request, decision adminauth.Decision)

/*
newAdminMiddleware guards the admin area. Without a session the visitor
is sent to the login page. A signed-in user who is not Granted gets the
denied handler, which tells a denial apart from a failed permission
lookup.
*/
func newAdminMiddleware(sessionService userSession, checker adminChecker, onDenied deniedHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err         error
				sessionUser *models.User
			)

			if sessionUser, err = sessionService.Get(r); err != nil || sessionUser == nil || sessionUser.ID == "" {
				http.Redirect(w, r, "/admin/login", http.StatusTemporaryRedirect)
				return
			}

			decision := checker.Check(sessionUser)

			switch decision.Outcome {
			case adminauth.Granted:
				ctx := context.WithValue(r.Context(), viewmodels.UserContextKey, sessionUser)
				next.ServeHTTP(w, r.WithContext(ctx))

			case adminauth.Indeterminate:
				slog.Error("admin permission check could not be completed", "error", decision.RoleErr, "userID", sessionUser.ID, "path", r.URL.Path)
				onDenied(w, r, decision)

			default:
				slog.Warn("admin access denied", "userID", sessionUser.ID, "path", r.URL.Path)
				onDenied(w, r, decision)
			}
		})
	}
}
