package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
)

// ConfigFileName is the project-local config file, generalized from the
// teacher's .chunkyrc to carry this tool's own flag set.
const ConfigFileName = ".chunkcli.yaml"

func main() {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("chunkcli"),
		kong.Description("Token-aware document chunking for retrieval pipelines"),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader, ConfigFileName),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
