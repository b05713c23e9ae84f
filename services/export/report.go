// Package exportsvc writes request reports as Excel workbooks and PDF documents.
package exportsvc

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

// Formats
const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

var ContentTypes = map[string]string{
	FormatExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:   "application/pdf",
}

var ErrUnknownFormat = errors.New("unknown export format")

// Write renders r in the given format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case FormatExcel:
		return WriteExcel(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	}
	return ErrUnknownFormat
}

// Filename is the download name of a report generated at now.
func Filename(now time.Time, format string) string {
	return "requests-" + now.Format("2006-01-02") + "." + format
}

type (
	// Report is one table per section, all sharing the same columns.
	Report struct {
		Title          string
		GeneratedLabel string
		GeneratedAt    time.Time
		Columns        []string
		Sections       []Section
		RightToLeft    bool
	}

	Section struct {
		Title string
		Rows  [][]string
	}
)

func (r Report) RowCount() int {
	var n int
	for _, s := range r.Sections {
		n += len(s.Rows)
	}
	return n
}

// NewRequestsReport lays out the buckets, in order, with titles translated to lang.
func NewRequestsReport(b request.Buckets, cat *i18n.Catalog, lang string, now time.Time) Report {
	t := func(key string) string { return cat.T(lang, key) }

	r := Report{
		Title:          t(i18n.KeyRequestsReport),
		GeneratedLabel: t(i18n.KeyGeneratedAt),
		GeneratedAt:    now,
		Columns: []string{
			t(i18n.KeyName),
			t(i18n.KeyRequestType),
			t(i18n.KeyAppliedDate),
			t(i18n.KeyDuration),
			t(i18n.KeyReason),
			t(i18n.KeyResult),
		},
		RightToLeft: lang == "ar",
	}
	for _, name := range request.BucketNames {
		reqs := b.Get(name)
		s := Section{Title: t(i18n.BucketKey[name]), Rows: make([][]string, 0, len(reqs))}
		for _, req := range reqs {
			result := req.Result
			if result == "" {
				result = request.ResultPending
			}
			s.Rows = append(s.Rows, []string{
				req.Name,
				t(string(req.RequestType)),
				req.AppliedDate,
				req.Duration,
				req.Reason,
				t(string(result)),
			})
		}
		r.Sections = append(r.Sections, s)
	}
	return r
}
