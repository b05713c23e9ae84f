package main

import (
	"github.com/trezcool/goose"

	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return core.NewArgumentError("migrate needs the postgres engine, got " + cli.conf.Database.Engine)
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, assets.FS, "migrations", arguments...)
}
