package main

import (
	"os"

	"github.com/milk9111/fxrelay/internal/fxctl"
)

func main() {
	os.Exit(fxctl.MainWithArgs(os.Args[1:], os.Stdout, os.Stderr))
}
