package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/ahmedtelkodsh/geniussmart/apps/api/echo"
	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/analytics"
	"github.com/ahmedtelkodsh/geniussmart/core/comparison"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	emailsvc "github.com/ahmedtelkodsh/geniussmart/services/email"
	logsvc "github.com/ahmedtelkodsh/geniussmart/services/logger"
	"github.com/ahmedtelkodsh/geniussmart/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	std := logsvc.NewStdLogger(conf.Debug)
	logger := logsvc.NewRollbarLogger(std, conf, "api")
	dbLogger := logsvc.NewRollbarLogger(std, conf, "db")

	// set up DB
	if conf.Database.Engine == database.EnginePostgres {
		if err := database.CreateIfNotExist(conf); err != nil {
			dbLogger.Fatal(fmt.Sprintf("creating database: %v", err), err)
		}
	}
	repo, db, err := database.NewRequestRepository(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	requestSvc := request.NewService(repo, mailSvc)

	source := analytics.NewRequestSource(repo, conf.Location())
	comparisons := analytics.NewComparisons(
		comparison.NewSessions(func() time.Time { return dates.NowFunc().In(conf.Location()) }),
		source,
		logger,
		analytics.Options{FetchTimeout: conf.Analytics.FetchTimeout, RetryDelay: conf.Analytics.RetryDelay},
	)
	defer comparisons.Close()

	catalog, err := i18n.NewCatalog()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading translations: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	request.InitValidators(validate, translator)

	core.ParseEmailTemplates(assets.FS, conf.FrontendBaseURL, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	signalShutdown := func() {
		select {
		case shutdown <- syscall.SIGTERM:
		default: // already shutting down
		}
	}

	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		SignalShutdown: signalShutdown,
		Validate:       validate,
		Translator:     translator,
		NowFunc:        dates.NowFunc,
		RequestSvc:     requestSvc,
		ChartSource:    source,
		Comparisons:    comparisons,
		Catalog:        catalog,
		Calendar:       dates.NewCalendar(conf.School.WeekStart, conf.School.WeekendDays...),
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + conf.Server.Address)
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
