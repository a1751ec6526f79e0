package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("keygen", version)
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"derive": func() (cli.Command, error) {
			return newDeriveCommand(ui), nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
		return 1
	}
	return exitCode
}
