package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze packages and emit a spec JSON document."`
	Check   CheckCmd   `cmd:"" help:"Fail if documentation drift or low coverage is found."`
	Serve   ServeCmd   `cmd:"" help:"Serve the analysis API over HTTP."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("openpkg"),
		kong.Description("Generate package specs and detect documentation drift."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
