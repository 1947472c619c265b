// Package approot is the composition root of the ImageLink front-end,
// modelled as explicit data passed to pure functions.
//
// A Module declares components, imports other modules, registers providers
// and exports some of their tokens; Resolve turns a root Module into a
// bound graph and Bootstrap mounts its bootstrap components into a host.
// Wiring stays explicit: no reflection, no global registry.
//
// See subpackages:
//   - di: tokens, providers, provider tables and chained scopes
//   - compose: Module/Component records, Resolve, Bootstrap, handles
//   - manifest: YAML/CUE declaration files built against a Catalog
//   - host/memhost: an in-memory page implementing compose.Host
//   - internal/app: the ImageLink composition
//   - cmd/approot: CLI to validate, resolve, bootstrap and draw graphs
//   - examples/composition: a runnable programmatic example
package approot
