package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

type bucketSummary struct {
	Now     string          `json:"now"`
	Counts  map[string]int  `json:"counts"`
	Buckets request.Buckets `json:"buckets"`
}

// buckets prints the requests of file (or of the database) partitioned against nowStr.
func (cli *commandLine) buckets(file string, types []request.Type, nowStr string) error {
	now := cli.now()
	if nowStr != "" {
		t, ok := dates.ParseISO(nowStr, cli.conf.Location())
		if !ok {
			return core.NewArgumentError("invalid -now date: " + nowStr)
		}
		now = t
	}

	reqs, err := cli.loadRequests(file, types)
	if err != nil {
		return err
	}
	b := request.Bucketize(request.FilterByType(reqs, types...), now)

	summary := bucketSummary{
		Now:     now.Format("2006-01-02T15:04:05Z07:00"),
		Counts:  make(map[string]int, len(request.BucketNames)),
		Buckets: b,
	}
	for _, name := range request.BucketNames {
		summary.Counts[name] = len(b.Get(name))
	}

	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func (cli *commandLine) loadRequests(file string, types []request.Type) ([]request.Request, error) {
	if file == "" {
		reqs, err := cli.repo.QueryRequests(context.Background(), request.QueryFilter{Types: types})
		return reqs, errors.Wrap(err, "querying requests")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "reading requests file")
	}
	var reqs []request.Request
	if err = json.Unmarshal(data, &reqs); err != nil {
		return nil, errors.Wrap(err, "decoding requests file")
	}
	return reqs, nil
}
