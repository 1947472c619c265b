package app

import (
	"html"
	"net/url"
	"strings"

	"github.com/fenrir/approot/di"
)

// Provider tokens of the ImageLink front-end.
const (
	TokenDocument    di.Token = "Document"
	TokenSanitizer   di.Token = "Sanitizer"
	TokenAPIBaseURL  di.Token = "APIBaseURL"
	TokenImages      di.Token = "ImageService"
	TokenCollections di.Token = "CollectionService"
)

// DefaultAPIBaseURL is where the ImageLink backend serves its REST API.
const DefaultAPIBaseURL = "/api/v1"

// Document is the platform page handle provided by BrowserModule.
type Document struct {
	Title string
}

// NewDocument returns the ImageLink page.
func NewDocument() *Document { return &Document{Title: "ImageLink"} }

// Sanitizer escapes untrusted text before it reaches the page.
type Sanitizer struct{}

// NewSanitizer returns a Sanitizer.
func NewSanitizer() *Sanitizer { return &Sanitizer{} }

// Sanitize escapes s for use as element text.
func (*Sanitizer) Sanitize(s string) string { return html.EscapeString(s) }

// ImageService addresses images by their share code.
type ImageService struct {
	base string
}

// NewImageService builds an ImageService rooted at base.
func NewImageService(base string) *ImageService {
	return &ImageService{base: strings.TrimSuffix(base, "/")}
}

// URL returns the endpoint of the image with the given code.
func (s *ImageService) URL(code string) string {
	return s.base + "/images/" + url.PathEscape(code)
}

// CollectionService addresses collections and the images inside them.
type CollectionService struct {
	base   string
	images *ImageService
}

// NewCollectionService builds a CollectionService rooted at base.
func NewCollectionService(base string, images *ImageService) *CollectionService {
	return &CollectionService{base: strings.TrimSuffix(base, "/"), images: images}
}

// URL returns the endpoint of the collection with the given code.
func (s *CollectionService) URL(code string) string {
	return s.base + "/collections/" + url.PathEscape(code)
}

// ImagesURL lists the images of a collection.
func (s *CollectionService) ImagesURL(code string) string {
	return s.URL(code) + "/images"
}

// Images returns the image service the collection service links to.
func (s *CollectionService) Images() *ImageService { return s.images }

func newImageService(deps di.Bag) (any, error) {
	base, err := di.TryGetAs[string](deps, TokenAPIBaseURL)
	if err != nil {
		return nil, err
	}
	return NewImageService(base), nil
}

func newCollectionService(deps di.Bag) (any, error) {
	base, err := di.TryGetAs[string](deps, TokenAPIBaseURL)
	if err != nil {
		return nil, err
	}
	images, err := di.TryGetAs[*ImageService](deps, TokenImages)
	if err != nil {
		return nil, err
	}
	return NewCollectionService(base, images), nil
}
