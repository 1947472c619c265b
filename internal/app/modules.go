// Package app declares the ImageLink front-end composition.
//
// The same graph is available as Go values (AppModule) and as the embedded
// approot.yaml manifest (Declaration), built against Catalog.
package app

import (
	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/di"
)

// AppModule is the composition root: it declares and bootstraps
// AppComponent, imports the platform and landing modules and registers no
// providers of its own.
func AppModule() *compose.Module {
	root := AppComponent()
	browser := BrowserModule()
	return &compose.Module{
		Name:         "AppModule",
		Declarations: []*compose.Component{root},
		Imports:      []*compose.Module{browser, LandingViewModule(browser)},
		Bootstrap:    []*compose.Component{root},
	}
}

// BrowserModule provides the page and a text sanitizer.
func BrowserModule() *compose.Module {
	return &compose.Module{
		Name: "BrowserModule",
		Providers: []di.Provider{
			di.ProvideClass(TokenDocument, NewDocument),
			di.ProvideClass(TokenSanitizer, NewSanitizer),
		},
		Exports: []di.Token{TokenDocument, TokenSanitizer},
	}
}

// LandingViewModule owns the landing page and the REST-facing services.
// browser is shared with the importing module; module names are unique per
// graph.
func LandingViewModule(browser *compose.Module) *compose.Module {
	return &compose.Module{
		Name:         "LandingViewModule",
		Declarations: []*compose.Component{LandingViewComponent()},
		Imports:      []*compose.Module{browser},
		Providers: []di.Provider{
			di.ProvideValue(TokenAPIBaseURL, DefaultAPIBaseURL),
			di.ProvideFactory(TokenImages, newImageService, TokenAPIBaseURL),
			di.ProvideFactory(TokenCollections, newCollectionService, TokenAPIBaseURL, TokenImages),
		},
		Exports: []di.Token{TokenAPIBaseURL, TokenImages, TokenCollections},
	}
}
