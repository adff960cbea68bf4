package main

import (
	"github.com/minepkg/mclaunch/cmd"
)

// set by goreleaser
var version string

func main() {
	if version != "" {
		cmd.Version = version
	}
	cmd.Execute()
}
