package admin

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/photoportfolio/cmd/website/internal/configuration"
	"github.com/adampresley/photoportfolio/cmd/website/internal/forms"
	internalmodels "github.com/adampresley/photoportfolio/cmd/website/internal/models"
	"github.com/adampresley/photoportfolio/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoportfolio/pkg/adminauth"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
	"github.com/adampresley/photoportfolio/pkg/slug"
	"github.com/go-playground/validator/v10"
)

const (
	msgAccessDenied     = "This account doesn't have access to the admin area."
	msgPermissionError  = "Your permissions could not be verified right now. Please try again in a few minutes."
	msgStorageDisabled  = "Photo storage is not configured, so albums and photos can't be changed right now."
	msgUnexpectedError  = "An unexpected error occurred. Please try again."
	msgInvalidLogin     = "Your email or password was not correct. Please try again."
	msgAccountCreated   = "Your account was created. An administrator must grant you access before you can manage albums."
	msgEmailAlreadyUsed = "An account with this email already exists."
)

type AdminHandlers interface {
	LoginPage(w http.ResponseWriter, r *http.Request)
	LoginAction(w http.ResponseWriter, r *http.Request)
	SignUpAction(w http.ResponseWriter, r *http.Request)
	LogoutAction(w http.ResponseWriter, r *http.Request)
	AccessDeniedPage(w http.ResponseWriter, r *http.Request, decision adminauth.Decision)
	DashboardPage(w http.ResponseWriter, r *http.Request)
	CreateAlbumAction(w http.ResponseWriter, r *http.Request)
	UploadPhotosAction(w http.ResponseWriter, r *http.Request)
	DeleteAlbumAction(w http.ResponseWriter, r *http.Request)
	DeletePhotoAction(w http.ResponseWriter, r *http.Request)
}

type AdminControllerConfig struct {
	AlbumService   services.AlbumServicer
	Checker        adminauth.Checker
	Config         *configuration.Config
	LibraryService services.LibraryServicer
	Renderer       rendering.TemplateRenderer
	SessionService sessions.Session[*models.User]
	StorageService services.StorageServicer
	UserService    services.UserServicer
	Validator      *validator.Validate
}

type AdminController struct {
	albumService   services.AlbumServicer
	checker        adminauth.Checker
	config         *configuration.Config
	libraryService services.LibraryServicer
	renderer       rendering.TemplateRenderer
	sessionService sessions.Session[*models.User]
	storageService services.StorageServicer
	userService    services.UserServicer
	validator      *validator.Validate
}

func NewAdminController(config AdminControllerConfig) AdminController {
	return AdminController{
		albumService:   config.AlbumService,
		checker:        config.Checker,
		config:         config.Config,
		libraryService: config.LibraryService,
		renderer:       config.Renderer,
		sessionService: config.SessionService,
		storageService: config.StorageService,
		userService:    config.UserService,
		validator:      config.Validator,
	}
}

func (c AdminController) baseViewModel(r *http.Request) viewmodels.BaseViewModel {
	return viewmodels.BaseViewModel{
		IsHtmx:             httphelpers.IsHtmx(r),
		JavascriptIncludes: []rendering.JavascriptInclude{},
		SiteName:           c.config.SiteName,
		StorageConfigured:  c.storageService.Configured(),
		User:               viewmodels.GetUserFromContext(r),
	}
}

/*
GET /admin/login
*/
func (c AdminController) LoginPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.AdminLogin{
		BaseViewModel: c.baseViewModel(r),
	}

	c.renderer.Render("pages/admin/login", viewData, w)
}

/*
POST /admin/login
*/
func (c AdminController) LoginAction(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		user *models.User
	)

	pageName := "pages/admin/login"

	credentials := viewmodels.Credentials{
		Email:    httphelpers.GetFromRequest[string](r, "email"),
		Password: httphelpers.GetFromRequest[string](r, "password"),
	}

	viewData := viewmodels.AdminLogin{
		BaseViewModel: c.baseViewModel(r),
		Email:         credentials.Email,
	}

	if err = c.validator.Struct(credentials); err != nil {
		viewData.IsWarning = true
		viewData.Message = forms.Describe(err)

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if user, err = c.userService.SignIn(credentials.Email, credentials.Password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			viewData.IsWarning = true
			viewData.Message = msgInvalidLogin
		} else {
			slog.Error("error signing in", "error", err, "email", credentials.Email)
			viewData.IsError = true
			viewData.Message = msgUnexpectedError
		}

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if c.startSession(w, r, user, &viewData) == adminauth.Granted {
		return
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
POST /admin/signup
*/
func (c AdminController) SignUpAction(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		user *models.User
	)

	pageName := "pages/admin/login"

	credentials := viewmodels.Credentials{
		Email:    httphelpers.GetFromRequest[string](r, "email"),
		Password: httphelpers.GetFromRequest[string](r, "password"),
	}

	viewData := viewmodels.AdminLogin{
		BaseViewModel: c.baseViewModel(r),
		Email:         credentials.Email,
	}

	if err = c.validator.Struct(credentials); err != nil {
		viewData.IsWarning = true
		viewData.Message = forms.Describe(err)

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if user, err = c.userService.SignUp(credentials.Email, credentials.Password); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			viewData.IsWarning = true
			viewData.Message = msgEmailAlreadyUsed
		} else {
			slog.Error("error signing up", "error", err, "email", credentials.Email)
			viewData.IsError = true
			viewData.Message = msgUnexpectedError
		}

		c.renderer.Render(pageName, viewData, w)
		return
	}

	slog.Info("user signed up", "userID", user.ID)

	switch c.startSession(w, r, user, &viewData) {
	case adminauth.Granted:
		return

	case adminauth.Denied:
		viewData.Message = msgAccountCreated
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
startSession runs the admin check right after a successful password
check. Only a Granted user keeps a session and is redirected to the
dashboard. Otherwise the session is destroyed and viewData carries the
message to show.
*/
func (c AdminController) startSession(w http.ResponseWriter, r *http.Request, user *models.User, viewData *viewmodels.AdminLogin) adminauth.Outcome {
	var (
		err error
	)

	decision := c.checker.Check(user)

	switch decision.Outcome {
	case adminauth.Granted:
		sessionUser := &models.User{
			ID:        user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}

		if err = c.sessionService.Set(r, sessionUser); err != nil {
			slog.Error("error setting user session", "error", err)
		}

		if err = c.sessionService.Save(w, r); err != nil {
			slog.Error("error saving session", "error", err)
		}

		http.Redirect(w, r, "/admin", http.StatusFound)
		return decision.Outcome

	case adminauth.Indeterminate:
		slog.Error("admin permission check failed at sign in", "error", decision.RoleErr, "userID", user.ID)
		viewData.IsError = true
		viewData.Message = msgPermissionError

	default:
		slog.Info("sign in denied, user is not an admin", "userID", user.ID)
		viewData.IsWarning = true
		viewData.Message = msgAccessDenied
	}

	_ = c.sessionService.Destroy(w, r)
	_ = c.sessionService.Save(w, r)
	w.WriteHeader(http.StatusForbidden)

	return decision.Outcome
}

/*
GET /admin/logout
*/
func (c AdminController) LogoutAction(w http.ResponseWriter, r *http.Request) {
	_ = c.sessionService.Destroy(w, r)
	_ = c.sessionService.Save(w, r)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

/*
AccessDeniedPage renders the 403 page for a signed-in user who failed
the admin check. A failed permission lookup shows its own message.
*/
func (c AdminController) AccessDeniedPage(w http.ResponseWriter, r *http.Request, decision adminauth.Decision) {
	viewData := viewmodels.AccessDenied{
		BaseViewModel: c.baseViewModel(r),
		Indeterminate: decision.Outcome == adminauth.Indeterminate,
	}

	if viewData.Indeterminate {
		viewData.IsError = true
		viewData.Message = msgPermissionError
	} else {
		viewData.IsWarning = true
		viewData.Message = msgAccessDenied
	}

	w.WriteHeader(http.StatusForbidden)
	c.renderer.Render("pages/admin/access-denied", viewData, w)
}

/*
GET /admin
*/
func (c AdminController) DashboardPage(w http.ResponseWriter, r *http.Request) {
	viewData := c.newDashboard(r)
	c.renderDashboard(w, viewData)
}

func (c AdminController) newDashboard(r *http.Request) viewmodels.AdminDashboard {
	result := viewmodels.AdminDashboard{
		BaseViewModel: c.baseViewModel(r),
		Albums:        []internalmodels.Album{},
	}

	result.JavascriptIncludes = append(result.JavascriptIncludes, rendering.JavascriptInclude{
		Type: "module", Src: "/static/js/pages/admin.js",
	})

	if !result.StorageConfigured {
		result.IsWarning = true
		result.Message = msgStorageDisabled
	}

	return result
}

func (c AdminController) renderDashboard(w http.ResponseWriter, viewData viewmodels.AdminDashboard) {
	albums, err := c.albumService.GetAlbums()

	if err != nil {
		slog.Error("error getting albums for dashboard", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem loading the albums."
	}

	viewData.Albums = internalmodels.NewAlbums(albums, c.storageService.PublicURL)
	c.renderer.Render("pages/admin/dashboard", viewData, w)
}

/*
POST /admin/albums
*/
func (c AdminController) CreateAlbumAction(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		result services.CreateAlbumResult
	)

	viewData := c.newDashboard(r)

	if err = r.ParseMultipartForm(c.config.MaxUploadBytes()); err != nil {
		slog.Error("error parsing album form", "error", err)
		viewData.IsError = true
		viewData.Message = "The upload could not be read. Please try again with fewer or smaller files."

		c.renderDashboard(w, viewData)
		return
	}

	request := services.NewAlbumRequest{
		Title:  r.FormValue("title"),
		Photos: uploadFiles(r.MultipartForm, "photos"),
	}

	if covers := uploadFiles(r.MultipartForm, "cover"); len(covers) > 0 {
		request.Cover = covers[0]
	}

	if result, err = c.libraryService.CreateAlbum(request); err != nil {
		viewData.IsWarning = false
		viewData.IsError = true
		viewData.Message = describeLibraryError(err)

		if viewData.Message == msgUnexpectedError {
			slog.Error("error creating album", "error", err, "title", request.Title)
		}

		c.renderDashboard(w, viewData)
		return
	}

	viewData.IsWarning = result.Upload.HasFailures()
	viewData.Message = fmt.Sprintf("Album '%s' created with %d photo(s).", result.Album.Title, result.Upload.Uploaded)
	viewData.UploadResult = &result.Upload

	c.renderDashboard(w, viewData)
}

/*
POST /admin/albums/{id}/photos
*/
func (c AdminController) UploadPhotosAction(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		result services.UploadResult
	)

	viewData := c.newDashboard(r)
	albumID := r.PathValue("id")

	if err = r.ParseMultipartForm(c.config.MaxUploadBytes()); err != nil {
		slog.Error("error parsing photo upload form", "error", err, "albumID", albumID)
		viewData.IsError = true
		viewData.Message = "The upload could not be read. Please try again with fewer or smaller files."

		c.renderDashboard(w, viewData)
		return
	}

	files := uploadFiles(r.MultipartForm, "photos")

	if len(files) == 0 {
		viewData.IsWarning = true
		viewData.Message = "Choose at least one photo to upload."

		c.renderDashboard(w, viewData)
		return
	}

	if result, err = c.libraryService.UploadPhotos(albumID, files); err != nil {
		viewData.IsWarning = false
		viewData.IsError = true
		viewData.Message = describeLibraryError(err)

		if viewData.Message == msgUnexpectedError {
			slog.Error("error uploading photos", "error", err, "albumID", albumID)
		}

		c.renderDashboard(w, viewData)
		return
	}

	viewData.IsWarning = result.HasFailures()
	viewData.Message = fmt.Sprintf("%d photo(s) uploaded successfully.", result.Uploaded)
	viewData.UploadResult = &result

	if result.HasFailures() {
		viewData.Message += fmt.Sprintf(" %d could not be uploaded.", len(result.Failures))
	}

	c.renderDashboard(w, viewData)
}

/*
DELETE /admin/albums/{id}
*/
func (c AdminController) DeleteAlbumAction(w http.ResponseWriter, r *http.Request) {
	albumID := r.PathValue("id")

	if err := c.libraryService.DeleteAlbum(albumID); err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			httphelpers.WriteText(w, http.StatusNotFound, "Album not found")
			return
		}

		slog.Error("error deleting album", "error", err, "albumID", albumID)
		httphelpers.TextInternalServerError(w, "There was a problem deleting this album.")
		return
	}

	httphelpers.WriteHtml(w, http.StatusOK, "")
}

/*
DELETE /admin/photos/{id}
*/
func (c AdminController) DeletePhotoAction(w http.ResponseWriter, r *http.Request) {
	photoID := r.PathValue("id")

	if err := c.libraryService.DeletePhoto(photoID); err != nil {
		if errors.Is(err, models.ErrPhotoNotFound) {
			httphelpers.WriteText(w, http.StatusNotFound, "Photo not found")
			return
		}

		slog.Error("error deleting photo", "error", err, "photoID", photoID)
		httphelpers.TextInternalServerError(w, "There was a problem deleting this photo.")
		return
	}

	httphelpers.WriteHtml(w, http.StatusOK, "")
}

func uploadFiles(form *multipart.Form, field string) []services.UploadFile {
	result := []services.UploadFile{}

	if form == nil {
		return result
	}

	for _, header := range form.File[field] {
		fileHeader := header

		result = append(result, services.UploadFile{
			Name: fileHeader.Filename,
			Open: func() (io.ReadCloser, error) {
				return fileHeader.Open()
			},
		})
	}

	return result
}

func describeLibraryError(err error) string {
	switch {
	case errors.Is(err, models.ErrStorageNotConfigured):
		return msgStorageDisabled
	case errors.Is(err, services.ErrTitleRequired):
		return "Give the album a title."
	case errors.Is(err, services.ErrCoverRequired):
		return "Choose a cover image for the album."
	case errors.Is(err, services.ErrNotAnImage):
		return "The cover must be an image."
	case errors.Is(err, services.ErrFileTooLarge):
		return "The cover image is too large."
	case errors.Is(err, slug.ErrEmptySlug):
		return "The title must contain at least one letter or digit."
	case errors.Is(err, models.ErrSlugTaken):
		return "An album with a similar title already exists."
	case errors.Is(err, models.ErrAlbumNotFound):
		return "That album doesn't exist anymore."
	default:
		return msgUnexpectedError
	}
}
