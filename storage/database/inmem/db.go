package inmemdb

import (
	"sync"

	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

type (
	DB struct {
		request *requestTable
	}

	requestRow struct {
		seq int
		req request.Request
	}

	requestTable struct {
		sync.RWMutex
		seq   int
		table map[string]*requestRow
	}
)

func Open() *DB {
	return &DB{
		request: &requestTable{table: make(map[string]*requestRow)},
	}
}
