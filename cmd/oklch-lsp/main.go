package main

import (
	"flag"
	"os"

	"github.com/jsvensson/oklchstudio/internal/lsp"
)

var version = "dev"

func main() {
	verbosity := flag.Int("v", 0, "log verbosity (logs go to stderr)")
	flag.Parse()

	s := lsp.NewServer(version)
	if err := s.Run(*verbosity); err != nil {
		os.Exit(1)
	}
}
