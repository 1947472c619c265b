// Package compose assembles declared modules into a running application.
//
// A Module is an explicit data record: the components it owns, the modules it
// imports, the providers it registers, the provider tokens it exports, and the
// components it bootstraps. Nothing is discovered by reflection, so a
// composition can be inspected and tested without a host runtime.
//
// Startup is two pure steps:
//
//	g, err := compose.Resolve(appModule)
//	if err != nil {
//		// CyclicImport, DuplicateOwnership, NotOwned, UnresolvedDependency...
//	}
//	handles, err := compose.Bootstrap(g, mounts, host)
//
// Resolve walks the import closure, rejects cycles and ownership conflicts,
// builds one di.Scope per module (own providers first, then the export surface
// of each import, ordered by the Policy) and binds every bootstrap component.
// Bootstrap constructs each bootstrap component once through the Host and
// attaches it to its mount point. Handles are torn down individually or all at
// once through Graph.Shutdown.
//
// Lifecycle: Undeclared -> Resolved -> Mounted -> TornDown. Transitions only
// move forward and tearing down twice is a no-op.
package compose
