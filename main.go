package main

import "github.com/pierregondois/lisa/cmd"

// version is set at build time with -ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
