package viewmodels

import (
	internalmodels "github.com/adampresley/photoportfolio/cmd/website/internal/models"
	"github.com/adampresley/photoportfolio/pkg/services"
)

type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type AdminLogin struct {
	BaseViewModel
	Email string
}

type AccessDenied struct {
	BaseViewModel
	Indeterminate bool
}

type AdminDashboard struct {
	BaseViewModel
	Albums       []internalmodels.Album
	UploadResult *services.UploadResult
}
