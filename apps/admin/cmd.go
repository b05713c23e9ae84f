package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf    *core.Config
	db      *sql.DB // postgres only
	repo    request.Repository
	catalog *i18n.Catalog
	mailSvc core.EmailService
	out     io.Writer
	nowFunc func() time.Time // mockable
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command against the postgres database")
	fmt.Fprintln(cli.out, "  buckets [-file requests.json] [-type TYPE,...] [-now DATE] - print the request buckets as JSON")
	fmt.Fprintln(cli.out, "  export -out PATH [-format xlsx|pdf] [-lang en|ar] [-mail EMAIL] - write the requests report")
	fmt.Fprintln(cli.out, "  token -sub ID -name NAME -role manager|teacher [-email EMAIL] - issue an API token")
}

func (cli *commandLine) now() time.Time {
	return cli.nowFunc().In(cli.conf.Location())
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	bucketsCmd := flag.NewFlagSet("buckets", flag.ContinueOnError)
	bucketsFile := bucketsCmd.String("file", "", "JSON file holding an array of requests; the database is read when empty.")
	bucketsTypes := bucketsCmd.String("type", "", "Comma separated request types to keep.")
	bucketsNow := bucketsCmd.String("now", "", "ISO-8601 date to bucket against; defaults to now.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFormat := exportCmd.String("format", "xlsx", "Report format: xlsx or pdf.")
	exportOut := exportCmd.String("out", "", "Path of the report file.")
	exportLang := exportCmd.String("lang", i18n.DefaultLang, "Report language: en or ar.")
	exportMail := exportCmd.String("mail", "", "Also e-mail the report to this address.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenSub := tokenCmd.String("sub", "", "The user's ID.")
	tokenName := tokenCmd.String("name", "", "The user's display name.")
	tokenRole := tokenCmd.String("role", "", "manager or teacher.")
	tokenEmail := tokenCmd.String("email", "", "The user's e-mail, used for decision notifications.")

	for _, fs := range []*flag.FlagSet{bucketsCmd, exportCmd, tokenCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "buckets":
		if err := bucketsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		types, err := parseTypes(*bucketsTypes)
		if err != nil {
			return err
		}
		return cli.buckets(*bucketsFile, types, *bucketsNow)

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportFormat, *exportOut, *exportLang, *exportMail)

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenSub == "" || *tokenRole == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSub, *tokenName, *tokenEmail, *tokenRole)

	default:
		cli.printUsage()
		return errHelp
	}
}

func parseTypes(s string) ([]request.Type, error) {
	var types []request.Type
	for _, val := range strings.Split(s, ",") {
		if val = core.CleanString(val); val == "" {
			continue
		}
		typ := request.Type(val)
		if !typ.IsValid() {
			return nil, core.NewArgumentError("unknown request type: " + val)
		}
		types = append(types, typ)
	}
	return types, nil
}
