// Package di provides explicit, scope-chained service resolution.
//
// A Provider binds a Token to an instantiation strategy:
//
//   - UseClass: construct a concrete type with a zero-argument constructor
//   - UseValue: hand out an existing instance
//   - UseFactory: call a factory with its declared dependency tokens
//   - UseExisting: alias another token
//
// Providers live in a Table (one per scope). A Scope searches its own table
// first and then an ordered list of linked Sources, so resolution order is
// decided by whoever builds the chain, never by ambient global state.
// Instances are created lazily in the scope that owns the provider and are
// cached there.
//
// There is no reflection-based injection and no global container. Wiring stays
// explicit in your composition root.
//
// Typical usage
//
//	platform := di.NewTable("BrowserModule").
//		Provide(di.ProvideValue("document", doc))
//	ps, _ := di.NewScope(platform)
//
//	app := di.NewTable("AppModule").
//		Provide(di.ProvideFactory("title", newTitle, "document"))
//	as, _ := di.NewScope(app, di.WithLinks(di.Exports(ps, "document")))
//
//	deps, err := as.Bind("title")
//
// Import
//
//	"github.com/fenrir/approot/di"
package di
