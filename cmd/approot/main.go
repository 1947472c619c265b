// Command approot validates, resolves, bootstraps and draws composition
// graphs.
//
// Without --manifest it works on the built-in ImageLink composition:
//
//	approot resolve
//	approot bootstrap --page app-root,app-footer
//	approot graph --manifest shop.cue --policy first-import-wins
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// Version is set via -ldflags.
var Version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
