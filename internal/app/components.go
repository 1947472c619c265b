package app

import (
	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"
)

// AppView is the constructed AppComponent.
type AppView struct {
	Document    *Document
	Collections *CollectionService
}

// Render prints the page title.
func (v *AppView) Render() string { return v.Document.Title }

// LandingView is the constructed LandingViewComponent.
type LandingView struct {
	Images      *ImageService
	Collections *CollectionService
	Sanitizer   *Sanitizer
}

// Render prints the landing call to action.
func (v *LandingView) Render() string {
	return v.Sanitizer.Sanitize("Share images & collections")
}

// AppComponent is the root view, mounted at <app-root>.
func AppComponent() *compose.Component {
	return &compose.Component{
		Name:     "AppComponent",
		Selector: "app-root",
		Requires: []di.Token{TokenDocument, TokenCollections},
		Factory:  newAppView,
	}
}

// LandingViewComponent is the landing page owned by LandingViewModule.
func LandingViewComponent() *compose.Component {
	return &compose.Component{
		Name:     "LandingViewComponent",
		Selector: "app-landing-view",
		Requires: []di.Token{TokenImages, TokenCollections, TokenSanitizer},
		Factory:  newLandingView,
	}
}

func newAppView(deps di.Bag) (any, error) {
	doc, err := di.TryGetAs[*Document](deps, TokenDocument)
	if err != nil {
		return nil, err
	}
	cols, err := di.TryGetAs[*CollectionService](deps, TokenCollections)
	if err != nil {
		return nil, err
	}
	return &AppView{Document: doc, Collections: cols}, nil
}

func newLandingView(deps di.Bag) (any, error) {
	images, err := di.TryGetAs[*ImageService](deps, TokenImages)
	if err != nil {
		return nil, err
	}
	cols, err := di.TryGetAs[*CollectionService](deps, TokenCollections)
	if err != nil {
		return nil, err
	}
	san, err := di.TryGetAs[*Sanitizer](deps, TokenSanitizer)
	if err != nil {
		return nil, err
	}
	return &LandingView{Images: images, Collections: cols, Sanitizer: san}, nil
}
