package viewmodels

import (
	internalmodels "github.com/adampresley/photoportfolio/cmd/website/internal/models"
)

type HomePage struct {
	BaseViewModel
	Albums []internalmodels.Album
}

type AboutPage struct {
	BaseViewModel
}

type ContactForm struct {
	Name      string `validate:"required,max=100"`
	Email     string `validate:"required,email,max=254"`
	Phone     string `validate:"max=40"`
	EventType string `validate:"max=60"`
	Message   string `validate:"required,min=10,max=5000"`
}

type ContactPage struct {
	BaseViewModel
	Form ContactForm
	Sent bool
}

type GalleryPage struct {
	BaseViewModel
	Albums           []internalmodels.Album
	CarouselInterval int
}

type AlbumPage struct {
	BaseViewModel
	Album    internalmodels.Album
	NotFound bool
}

type LightboxPage struct {
	BaseViewModel
	Album     internalmodels.Album
	Photo     internalmodels.Photo
	Position  int
	Total     int
	PrevIndex int
	NextIndex int
}
