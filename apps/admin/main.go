package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/store"
	"github.com/trezcool/shule/storage/cache/filecache"
	inmemcache "github.com/trezcool/shule/storage/cache/inmem"
	"github.com/trezcool/shule/storage/remote/pgdoc"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.LoadConfig()

	var cache store.LocalCache
	var err error
	switch conf.Cache.Backend {
	case "file":
		cache, err = filecache.New(conf.Cache.Dir)
		errAndDie(err)
	default:
		cache = inmemcache.New()
	}

	var pg *pgdoc.Store
	var remote store.RemoteStore
	if conf.Sync.Enabled && conf.Sync.Backend == "postgres" {
		pg, err = pgdoc.Open(conf)
		errAndDie(err)
		defer pg.Close()
		remote = pg
	}

	manager := store.NewManager(cache, remote, conf.Sync.DebounceWindow, core.NewStdLogger(logger))
	validate, _ := core.NewValidator()

	schoolSvc := school.NewService(school.NewRegistry(manager), manager, validate)
	planSvc := plan.NewService(manager, validate)
	defer func() {
		schoolSvc.Close()
		planSvc.Close()
	}()

	// start CLI
	cli := commandLine{
		schoolSvc: schoolSvc,
		planSvc:   planSvc,
		pg:        pg,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
