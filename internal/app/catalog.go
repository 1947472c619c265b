package app

import (
	_ "embed"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/manifest"
)

//go:embed approot.yaml
var embedded []byte

// ManifestName is the file name the embedded manifest is parsed under.
const ManifestName = "approot.yaml"

// Catalog registers the constructors approot.yaml refers to.
func Catalog() *manifest.Catalog {
	return manifest.NewCatalog().
		RegisterClass("Document", manifest.Class(NewDocument)).
		RegisterClass("Sanitizer", manifest.Class(NewSanitizer)).
		RegisterFactory("newImageService", newImageService).
		RegisterFactory("newCollectionService", newCollectionService).
		RegisterComponent("AppComponent", newAppView).
		RegisterComponent("LandingViewComponent", newLandingView)
}

// Manifest returns the embedded approot.yaml.
func Manifest() (*manifest.Manifest, error) {
	return manifest.ParseYAML(embedded, ManifestName)
}

// Declaration builds AppModule from the embedded manifest.
func Declaration() (*compose.Module, error) {
	m, err := Manifest()
	if err != nil {
		return nil, err
	}
	return manifest.Build(m, Catalog())
}
