package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	emailsvc "github.com/ahmedtelkodsh/geniussmart/services/email"
	logsvc "github.com/ahmedtelkodsh/geniussmart/services/logger"
	"github.com/ahmedtelkodsh/geniussmart/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(conf.Debug), conf, "admin")

	catalog, err := i18n.NewCatalog()
	errAndDie(logger, err)
	core.ParseEmailTemplates(assets.FS, conf.FrontendBaseURL, logger)

	var mailSvc core.EmailService
	if conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	cli := commandLine{
		conf:    conf,
		catalog: catalog,
		mailSvc: mailSvc,
		out:     os.Stdout,
		nowFunc: dates.NowFunc,
	}

	// set up DB; migrate drives the schema itself so it gets a bare connection
	var closer io.Closer
	if len(os.Args) > 1 && os.Args[1] == "migrate" && conf.Database.Engine == database.EnginePostgres {
		errAndDie(logger, database.CreateIfNotExist(conf))
		cli.db, err = database.Open(conf)
		errAndDie(logger, err)
		errAndDie(logger, cli.db.Ping())
		closer = cli.db
	} else {
		cli.repo, closer, err = database.NewRequestRepository(conf)
		errAndDie(logger, err)
	}

	err = cli.run(os.Args)
	_ = closer.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
