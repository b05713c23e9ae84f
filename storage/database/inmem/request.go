package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

type requestRepository struct {
	db *requestTable
}

var _ request.Repository = (*requestRepository)(nil)

func NewRequestRepository(db *DB) request.Repository {
	return &requestRepository{db: db.request}
}

func (repo *requestRepository) CreateRequest(_ context.Context, req request.Request) (request.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Result == "" {
		req.Result = request.ResultPending
	}
	repo.db.seq++
	repo.db.table[req.ID] = &requestRow{seq: repo.db.seq, req: req}
	return req, nil
}

func (repo *requestRepository) GetRequest(_ context.Context, id string) (request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if row, ok := repo.db.table[id]; ok {
		return row.req, nil
	}
	return request.Request{}, request.ErrNotFound
}

func (repo *requestRepository) QueryRequests(_ context.Context, filter request.QueryFilter) ([]request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*requestRow, 0, len(repo.db.table))
	for _, row := range repo.db.table {
		if filter.TeacherID != "" && row.req.TeacherID != filter.TeacherID {
			continue
		}
		if !filter.HasType(row.req.RequestType) {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	for k := len(filter.Orderings) - 1; k >= 0; k-- {
		ord := filter.Orderings[k]
		sort.SliceStable(rows, func(i, j int) bool {
			c := compare(rows[i].req, rows[j].req, ord.Field)
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		})
	}

	reqs := make([]request.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.req)
	}
	return reqs, nil
}

func (repo *requestRepository) UpdateRequestResult(_ context.Context, id string, result request.Result, decidedAt time.Time) (request.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	row, ok := repo.db.table[id]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	if !row.req.IsPending() {
		return request.Request{}, request.ErrAlreadyDecided
	}
	row.req.Result = result
	row.req.DecidedAt = &decidedAt
	return row.req, nil
}

// compare orders two requests on a DB column name.
func compare(a, b request.Request, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "request_type":
		return strings.Compare(string(a.RequestType), string(b.RequestType))
	case "applied_date":
		return strings.Compare(a.AppliedDate, b.AppliedDate)
	case "result":
		return strings.Compare(string(a.Result), string(b.Result))
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}
