package main

import (
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/photoportfolio/cmd/website/internal/admin"
	"github.com/adampresley/photoportfolio/cmd/website/internal/gallery"
	"github.com/adampresley/photoportfolio/cmd/website/internal/home"
)

type routeHandlers struct {
	admin           admin.AdminHandlers
	adminMiddleware mux.MiddlewareFunc
	formLimiter     mux.MiddlewareFunc
	gallery         gallery.GalleryHandlers
	home            home.HomeHandlers
}

/*
newRoutes declares every route of the site. The carousel stream lives
outside /gallery/ so that no album slug can shadow it.
*/
func newRoutes(h routeHandlers) []mux.Route {
	adminOnly := []mux.MiddlewareFunc{h.adminMiddleware}
	limited := []mux.MiddlewareFunc{h.formLimiter}

	return []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: h.home.HomePage},
		{Path: "GET /about", HandlerFunc: h.home.AboutPage},
		{Path: "GET /contact", HandlerFunc: h.home.ContactPage},
		{Path: "POST /contact", HandlerFunc: h.home.ContactAction, Middlewares: limited},
		{Path: "GET /gallery", HandlerFunc: h.gallery.GalleryPage},
		{Path: "GET /carousel-stream", HandlerFunc: h.gallery.CarouselStream},
		{Path: "GET /gallery/{slug}", HandlerFunc: h.gallery.AlbumPage},
		{Path: "GET /gallery/{slug}/photos/{index}", HandlerFunc: h.gallery.LightboxPage},
		{Path: "GET /admin/login", HandlerFunc: h.admin.LoginPage},
		{Path: "POST /admin/login", HandlerFunc: h.admin.LoginAction, Middlewares: limited},
		{Path: "POST /admin/signup", HandlerFunc: h.admin.SignUpAction, Middlewares: limited},
		{Path: "GET /admin/logout", HandlerFunc: h.admin.LogoutAction},
		{Path: "GET /admin", HandlerFunc: h.admin.DashboardPage, Middlewares: adminOnly},
		{Path: "POST /admin/albums", HandlerFunc: h.admin.CreateAlbumAction, Middlewares: adminOnly},
		{Path: "POST /admin/albums/{id}/photos", HandlerFunc: h.admin.UploadPhotosAction, Middlewares: adminOnly},
		{Path: "DELETE /admin/albums/{id}", HandlerFunc: h.admin.DeleteAlbumAction, Middlewares: adminOnly},
		{Path: "DELETE /admin/photos/{id}", HandlerFunc: h.admin.DeletePhotoAction, Middlewares: adminOnly},
	}
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}
