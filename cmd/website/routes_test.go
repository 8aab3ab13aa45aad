package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/photoportfolio/pkg/adminauth"
	"github.com/stretchr/testify/assert"
)

type handlerNames struct{}

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name))
	}
}

func (handlerNames) HomePage(w http.ResponseWriter, r *http.Request)    { named("HomePage")(w, r) }
func (handlerNames) AboutPage(w http.ResponseWriter, r *http.Request)   { named("AboutPage")(w, r) }
func (handlerNames) ContactPage(w http.ResponseWriter, r *http.Request) { named("ContactPage")(w, r) }
func (handlerNames) ContactAction(w http.ResponseWriter, r *http.Request) {
	named("ContactAction")(w, r)
}
func (handlerNames) GalleryPage(w http.ResponseWriter, r *http.Request) { named("GalleryPage")(w, r) }
func (handlerNames) CarouselStream(w http.ResponseWriter, r *http.Request) {
	named("CarouselStream")(w, r)
}
func (handlerNames) AlbumPage(w http.ResponseWriter, r *http.Request) {
	named("AlbumPage:"+r.PathValue("slug"))(w, r)
}
func (handlerNames) LightboxPage(w http.ResponseWriter, r *http.Request) {
	named("LightboxPage")(w, r)
}
func (handlerNames) LoginPage(w http.ResponseWriter, r *http.Request)    { named("LoginPage")(w, r) }
func (handlerNames) LoginAction(w http.ResponseWriter, r *http.Request)  { named("LoginAction")(w, r) }
func (handlerNames) SignUpAction(w http.ResponseWriter, r *http.Request) { named("SignUpAction")(w, r) }
func (handlerNames) LogoutAction(w http.ResponseWriter, r *http.Request) { named("LogoutAction")(w, r) }
func (handlerNames) AccessDeniedPage(w http.ResponseWriter, r *http.Request, decision adminauth.Decision) {
	named("AccessDeniedPage")(w, r)
}
func (handlerNames) DashboardPage(w http.ResponseWriter, r *http.Request) {
	named("DashboardPage")(w, r)
}
func (handlerNames) CreateAlbumAction(w http.ResponseWriter, r *http.Request) {
	named("CreateAlbumAction")(w, r)
}
func (handlerNames) UploadPhotosAction(w http.ResponseWriter, r *http.Request) {
	named("UploadPhotosAction")(w, r)
}
func (handlerNames) DeleteAlbumAction(w http.ResponseWriter, r *http.Request) {
	named("DeleteAlbumAction")(w, r)
}
func (handlerNames) DeletePhotoAction(w http.ResponseWriter, r *http.Request) {
	named("DeletePhotoAction")(w, r)
}

func passThrough(next http.Handler) http.Handler {
	return next
}

func TestRoutesDispatch(t *testing.T) {
	h := handlerNames{}

	m := mux.SetupRouter(mux.RouterConfig{Address: "localhost:0"}, newRoutes(routeHandlers{
		admin:           h,
		adminMiddleware: passThrough,
		formLimiter:     passThrough,
		gallery:         h,
		home:            h,
	}))

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{method: http.MethodGet, path: "/gallery/carousel", want: "AlbumPage:carousel"},
		{method: http.MethodGet, path: "/gallery/praia", want: "AlbumPage:praia"},
		{method: http.MethodGet, path: "/carousel-stream", want: "CarouselStream"},
		{method: http.MethodGet, path: "/gallery/praia/photos/2", want: "LightboxPage"},
		{method: http.MethodGet, path: "/gallery", want: "GalleryPage"},
		{method: http.MethodPost, path: "/admin/login", want: "LoginAction"},
		{method: http.MethodDelete, path: "/admin/photos/p1", want: "DeletePhotoAction"},
		{method: http.MethodGet, path: "/heartbeat", want: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			m.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.want, recorder.Body.String())
		})
	}
}
