package main

import (
	"context"

	"github.com/alecthomas/kong"

	"kudos/cmd/kudos/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool                `help:"Enable debug logging."`
		EnvFile string              `help:"Optional dotenv file loaded before reading the environment." default:".env" type:"path"`
		Version kong.VersionFlag    `help:"Print the version."`
		Serve   commands.ServeCmd   `cmd:"" help:"Start the kudos HTTP API"`
		Migrate commands.MigrateCmd `cmd:"" help:"Manage the Postgres schema"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, EnvFile: cli.EnvFile})
	cmd.FatalIfErrorf(err)
}
