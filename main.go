package main

import (
	"deckhand/cmd"
	"deckhand/internal/buildinfo"
)

func main() {
	cmd.SetVersion(buildinfo.Version())
	cmd.Execute()
}
