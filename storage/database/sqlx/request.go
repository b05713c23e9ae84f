package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

const requestColumns = "id, teacher_id, name, email, request_type, applied_date, duration, reason, result, created_at, decided_at"

type requestRow struct {
	ID          string      `db:"id"`
	TeacherID   string      `db:"teacher_id"`
	Name        string      `db:"name"`
	Email       null.String `db:"email"`
	RequestType string      `db:"request_type"`
	AppliedDate string      `db:"applied_date"`
	Duration    string      `db:"duration"`
	Reason      string      `db:"reason"`
	Result      string      `db:"result"`
	CreatedAt   time.Time   `db:"created_at"`
	DecidedAt   null.Time   `db:"decided_at"`
}

func toRow(req request.Request) requestRow {
	return requestRow{
		ID:          req.ID,
		TeacherID:   req.TeacherID,
		Name:        req.Name,
		Email:       null.NewString(req.Email, req.Email != ""),
		RequestType: string(req.RequestType),
		AppliedDate: req.AppliedDate,
		Duration:    req.Duration,
		Reason:      req.Reason,
		Result:      string(req.Result),
		CreatedAt:   req.CreatedAt.UTC(),
		DecidedAt:   null.TimeFromPtr(req.DecidedAt),
	}
}

func (row requestRow) toRequest() request.Request {
	return request.Request{
		ID:          row.ID,
		TeacherID:   row.TeacherID,
		Name:        row.Name,
		Email:       row.Email.String,
		RequestType: request.Type(row.RequestType),
		AppliedDate: row.AppliedDate,
		Duration:    row.Duration,
		Reason:      row.Reason,
		Result:      request.Result(row.Result),
		CreatedAt:   row.CreatedAt.UTC(),
		DecidedAt:   row.DecidedAt.Ptr(),
	}
}

type requestRepository struct {
	db *sqlx.DB
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *sqlx.DB) request.Repository {
	return &requestRepository{db: db}
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req request.Request) (request.Request, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Result == "" {
		req.Result = request.ResultPending
	}
	q := "INSERT INTO request (" + requestColumns + ") VALUES " +
		"(:id, :teacher_id, :name, :email, :request_type, :applied_date, :duration, :reason, :result, :created_at, :decided_at)"
	if _, err := repo.db.NamedExecContext(ctx, q, toRow(req)); err != nil {
		return request.Request{}, errors.Wrap(err, "inserting request")
	}
	return req, nil
}

func (repo *requestRepository) GetRequest(ctx context.Context, id string) (request.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return request.Request{}, request.ErrNotFound
	}

	var row requestRow
	q := repo.db.Rebind("SELECT " + requestColumns + " FROM request WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, errors.Wrap(err, "selecting request")
	}
	return row.toRequest(), nil
}

func (repo *requestRepository) QueryRequests(ctx context.Context, filter request.QueryFilter) ([]request.Request, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.TeacherID != "" {
		where = append(where, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		where = append(where, "request_type IN (?)")
		args = append(args, types)
	}

	q := "SELECT " + requestColumns + " FROM request"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(filter.Orderings)

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding query")
	}

	var rows []requestRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting requests")
	}
	reqs := make([]request.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toRequest())
	}
	return reqs, nil
}

func (repo *requestRepository) UpdateRequestResult(ctx context.Context, id string, result request.Result, decidedAt time.Time) (request.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return request.Request{}, request.ErrNotFound
	}

	q := repo.db.Rebind("UPDATE request SET result = ?, decided_at = ? WHERE id = ? AND (result = ? OR result = '')")
	res, err := repo.db.ExecContext(ctx, q, string(result), decidedAt.UTC(), id, string(request.ResultPending))
	if err != nil {
		return request.Request{}, errors.Wrap(err, "updating request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err = repo.GetRequest(ctx, id); err != nil {
			return request.Request{}, err
		}
		return request.Request{}, request.ErrAlreadyDecided
	}
	return repo.GetRequest(ctx, id)
}

// orderBy keeps the known columns only; creation order is the tie-breaker.
func orderBy(ords []core.DBOrdering) string {
	allowed := make(map[string]bool, len(request.OrderingFields))
	for _, col := range request.OrderingFields {
		allowed[col] = true
	}
	clauses := make([]string, 0, len(ords)+1)
	for _, ord := range ords {
		if !allowed[ord.Field] {
			continue
		}
		if ord.Field == "name" {
			ord.Field = "LOWER(name)"
		}
		clauses = append(clauses, ord.String())
	}
	return strings.Join(append(clauses, "created_at ASC"), ", ")
}
