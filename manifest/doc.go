// Package manifest loads composition declarations from YAML or CUE files and
// builds them into compose.Module graphs.
//
// A manifest names modules, components and providers as plain data. Anything
// that needs Go code (constructors, factories, component factories) is
// referenced by name and looked up in a Catalog at build time:
//
//	root: AppModule
//	modules:
//	  - name: AppModule
//	    declarations: [AppComponent]
//	    imports: [LandingViewModule]
//	    bootstrap: [AppComponent]
//	  - name: LandingViewModule
//	    providers:
//	      - token: apiBaseURL
//	        useValue: /api
//	    exports: [apiBaseURL]
//	components:
//	  - name: AppComponent
//	    selector: app-root
//	    requires: [apiBaseURL]
//
// Files ending in .yaml or .yml are decoded with yaml.v3. Files ending in
// .cue or .json are compiled with CUE and unified with the embedded #Manifest
// schema. Both paths finish with Manifest.Validate.
package manifest
