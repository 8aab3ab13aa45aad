package home

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/photoportfolio/cmd/website/internal/configuration"
	"github.com/adampresley/photoportfolio/cmd/website/internal/forms"
	internalmodels "github.com/adampresley/photoportfolio/cmd/website/internal/models"
	"github.com/adampresley/photoportfolio/cmd/website/internal/viewmodels"
	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/adampresley/photoportfolio/pkg/services"
	"github.com/go-playground/validator/v10"
)

const (
	latestAlbumCount = 3
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
	AboutPage(w http.ResponseWriter, r *http.Request)
	ContactPage(w http.ResponseWriter, r *http.Request)
	ContactAction(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	AlbumService   services.AlbumServicer
	Config         *configuration.Config
	EmailService   services.EmailServicer
	Renderer       rendering.TemplateRenderer
	StorageService services.StorageServicer
	Validator      *validator.Validate
}

type HomeController struct {
	albumService   services.AlbumServicer
	config         *configuration.Config
	emailService   services.EmailServicer
	renderer       rendering.TemplateRenderer
	storageService services.StorageServicer
	validator      *validator.Validate
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		albumService:   config.AlbumService,
		config:         config.Config,
		emailService:   config.EmailService,
		renderer:       config.Renderer,
		storageService: config.StorageService,
		validator:      config.Validator,
	}
}

func (c HomeController) baseViewModel(r *http.Request) viewmodels.BaseViewModel {
	return viewmodels.BaseViewModel{
		IsHtmx:             httphelpers.IsHtmx(r),
		JavascriptIncludes: []rendering.JavascriptInclude{},
		SiteName:           c.config.SiteName,
		StorageConfigured:  c.storageService.Configured(),
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		albums []*models.Album
	)

	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: c.baseViewModel(r),
		Albums:        []internalmodels.Album{},
	}

	if !viewData.StorageConfigured {
		viewData.IsWarning = true
		viewData.Message = "Photo storage is not configured. Images can't be shown right now."
	}

	if albums, err = c.albumService.GetAlbums(); err != nil {
		slog.Error("error getting albums for home page", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem getting the latest albums."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if len(albums) > latestAlbumCount {
		albums = albums[:latestAlbumCount]
	}

	viewData.Albums = internalmodels.NewAlbums(albums, c.storageService.PublicURL)
	c.renderer.Render(pageName, viewData, w)
}

/*
GET /about
*/
func (c HomeController) AboutPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.AboutPage{
		BaseViewModel: c.baseViewModel(r),
	}

	c.renderer.Render("pages/about", viewData, w)
}

/*
GET /contact
*/
func (c HomeController) ContactPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.ContactPage{
		BaseViewModel: c.baseViewModel(r),
		Form:          viewmodels.ContactForm{},
	}

	if !c.emailService.Enabled() {
		viewData.IsWarning = true
		viewData.Message = "The contact form is unavailable at the moment."
	}

	c.renderer.Render("pages/contact", viewData, w)
}

/*
POST /contact
*/
func (c HomeController) ContactAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	pageName := "pages/contact"

	viewData := viewmodels.ContactPage{
		BaseViewModel: c.baseViewModel(r),
		Form: viewmodels.ContactForm{
			Name:      httphelpers.GetFromRequest[string](r, "name"),
			Email:     httphelpers.GetFromRequest[string](r, "email"),
			Phone:     httphelpers.GetFromRequest[string](r, "phone"),
			EventType: httphelpers.GetFromRequest[string](r, "eventType"),
			Message:   httphelpers.GetFromRequest[string](r, "message"),
		},
	}

	if err = c.validator.Struct(viewData.Form); err != nil {
		viewData.IsWarning = true
		viewData.Message = forms.Describe(err)

		c.renderer.Render(pageName, viewData, w)
		return
	}

	err = c.emailService.SendContactMessage(services.ContactMessage{
		Name:      viewData.Form.Name,
		Email:     viewData.Form.Email,
		Phone:     viewData.Form.Phone,
		EventType: viewData.Form.EventType,
		Message:   viewData.Form.Message,
	})

	if err != nil {
		slog.Error("error sending contact message", "error", err, "email", viewData.Form.Email)
		viewData.IsError = true
		viewData.Message = "Your message could not be sent. Please try again later."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	slog.Info("contact message sent", "email", viewData.Form.Email)

	viewData.Sent = true
	viewData.Form = viewmodels.ContactForm{}
	viewData.Message = "Thank you! Your message was sent and I'll get back to you soon."
	c.renderer.Render(pageName, viewData, w)
}
