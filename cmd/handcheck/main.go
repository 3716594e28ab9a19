package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"

	"github.com/lox/handcheck/internal/config"
)

// version is set by ldflags during build
var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handcheck"),
		kong.Description("Validate NLHE hand histories and repair them into legal hands"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(config.Loader),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()

	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	ctx.FatalIfErrorf(err)
}
