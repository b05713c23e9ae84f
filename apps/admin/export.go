package main

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	exportsvc "github.com/ahmedtelkodsh/geniussmart/services/export"
)

// export writes the bucketed requests report to out, and optionally e-mails it.
func (cli *commandLine) export(format, out, lang, mailTo string) error {
	format = core.CleanString(format, true /* lower */)
	contentType, ok := exportsvc.ContentTypes[format]
	if !ok {
		return errors.Wrap(exportsvc.ErrUnknownFormat, format)
	}

	now := cli.now()
	reqs, err := cli.repo.QueryRequests(context.Background(), request.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	report := exportsvc.NewRequestsReport(request.Bucketize(reqs, now), cli.catalog, lang, now)

	var buf bytes.Buffer
	if err = exportsvc.Write(&buf, format, report); err != nil {
		return errors.Wrap(err, "writing report")
	}
	if err = os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "saving report")
	}
	fmt.Fprintf(cli.out, "%d requests written to %s\n", report.RowCount(), out)

	if mailTo == "" {
		return nil
	}
	addr, err := mail.ParseAddress(mailTo)
	if err != nil {
		return errors.Wrap(err, "parsing -mail address")
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{*addr},
		Subject: report.Title,
		BodyStr: fmt.Sprintf("%s: %d requests.", report.Title, report.RowCount()),
	}
	if err = msg.Attach(&buf, exportsvc.Filename(now, format), contentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	cli.mailSvc.SendMessages(msg)
	fmt.Fprintf(cli.out, "report sent to %s\n", addr.Address)
	return nil
}
