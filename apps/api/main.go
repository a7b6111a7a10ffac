package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/message"
	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/roster"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/store"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/cache/filecache"
	inmemcache "github.com/trezcool/shule/storage/cache/inmem"
	"github.com/trezcool/shule/storage/remote/pgdoc"
	"github.com/trezcool/shule/storage/remote/redisdoc"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.LoadConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = core.NewStdLogger(std)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	cache, err := openCache(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
	}

	remote, closeRemote, err := openRemote(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up remote store: %v", err), err)
	}
	if closeRemote != nil {
		defer func() {
			if err := closeRemote.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing remote store: %v", err), err)
			}
		}()
	}

	manager := store.NewManager(cache, remote, conf.Sync.DebounceWindow, logger)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	validate, translator := core.NewValidator()

	// set up services
	schoolSvc := school.NewService(school.NewRegistry(manager), manager, validate)
	rosterSvc := roster.NewService(manager, validate)
	planSvc := plan.NewService(manager, validate)
	attendanceSvc := attendance.NewService(manager, rosterSvc, validate, logger)
	messageSvc := message.NewService(manager, mailSvc, validate)
	verifier := user.NewVerifier(conf.Bootstrap, planSvc)

	defer func() {
		// flush pending remote writes
		schoolSvc.Close()
		rosterSvc.Close()
		planSvc.Close()
		attendanceSvc.Close()
		messageSvc.Close()
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.Addr,
		SchoolSvc:     schoolSvc,
		RosterSvc:     rosterSvc,
		PlanSvc:       planSvc,
		AttendanceSvc: attendanceSvc,
		MessageSvc:    messageSvc,
		Verifier:      verifier,
		Validate:      validate,
		Translator:    translator,
		Logger:        logger,
		SignalShutdown: func() {
			shutdown <- syscall.SIGTERM
		},
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func openCache(conf *core.Config) (store.LocalCache, error) {
	switch conf.Cache.Backend {
	case "file":
		return filecache.New(conf.Cache.Dir)
	default:
		return inmemcache.New(), nil
	}
}

// openRemote resolves the configured sync backend; a nil RemoteStore keeps
// the application fully local.
func openRemote(conf *core.Config) (store.RemoteStore, io.Closer, error) {
	if !conf.Sync.Enabled {
		return nil, nil, nil
	}
	switch conf.Sync.Backend {
	case "postgres":
		pg, err := pgdoc.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if err = pgdoc.Migrate(pg.DB(), "up"); err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	default:
		rd, err := redisdoc.Open(context.Background(), conf)
		if err != nil {
			return nil, nil, err
		}
		return rd, rd, nil
	}
}
