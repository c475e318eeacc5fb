package main

import (
	"os"

	"github.com/linkslice/check-cmd-wrapper/pkg/checkcmd/cmd"
)

// Build contains the current git commit id
// compile passing -ldflags "-X main.Build <build sha1>" to set the id.
var Build string

func main() {
	cmd.Build = Build
	if err := cmd.Execute(); err != nil {
		os.Exit(3)
	}
}
