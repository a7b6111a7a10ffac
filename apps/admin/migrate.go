package main

import (
	"errors"

	"github.com/trezcool/shule/storage/remote/pgdoc"
)

var gooseRunFunc = pgdoc.Migrate // mockable

var errNoPostgres = errors.New("migrate requires the postgres sync backend (SYNCENABLED=true, SYNCBACKEND=postgres)")

func (cli *commandLine) migrate(args []string) error {
	if cli.pg == nil {
		return errNoPostgres
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(cli.pg.DB(), args[0], arguments...)
}
