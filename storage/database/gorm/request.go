package gormrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

type requestModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	TeacherID   string `gorm:"size:64;not null;index"`
	Name        string `gorm:"size:255;not null"`
	Email       *string
	RequestType string `gorm:"size:32;not null;index"`
	AppliedDate string `gorm:"size:64;not null"`
	Duration    string `gorm:"size:64;not null;default:''"`
	Reason      string `gorm:"not null;default:''"`
	Result      string `gorm:"size:16;not null;default:Pending"`
	CreatedAt   time.Time
	DecidedAt   *time.Time
}

func (requestModel) TableName() string { return "request" }

func fromRequest(req request.Request) requestModel {
	m := requestModel{
		ID:          req.ID,
		TeacherID:   req.TeacherID,
		Name:        req.Name,
		RequestType: string(req.RequestType),
		AppliedDate: req.AppliedDate,
		Duration:    req.Duration,
		Reason:      req.Reason,
		Result:      string(req.Result),
		CreatedAt:   req.CreatedAt.UTC(),
		DecidedAt:   req.DecidedAt,
	}
	if req.Email != "" {
		email := req.Email
		m.Email = &email
	}
	return m
}

func (m requestModel) toRequest() request.Request {
	req := request.Request{
		ID:          m.ID,
		TeacherID:   m.TeacherID,
		Name:        m.Name,
		RequestType: request.Type(m.RequestType),
		AppliedDate: m.AppliedDate,
		Duration:    m.Duration,
		Reason:      m.Reason,
		Result:      request.Result(m.Result),
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.Email != nil {
		req.Email = *m.Email
	}
	if m.DecidedAt != nil {
		decided := m.DecidedAt.UTC()
		req.DecidedAt = &decided
	}
	return req
}

type requestRepository struct {
	db *gorm.DB
}

var _ request.Repository = (*requestRepository)(nil)

// NewRequestRepository migrates the request table and returns its repository.
func NewRequestRepository(db *gorm.DB) (request.Repository, error) {
	if err := db.AutoMigrate(&requestModel{}); err != nil {
		return nil, errors.Wrap(err, "migrating request table")
	}
	return &requestRepository{db: db}, nil
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req request.Request) (request.Request, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Result == "" {
		req.Result = request.ResultPending
	}

	m := fromRequest(req)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return request.Request{}, errors.Wrap(err, "inserting request")
	}
	return req, nil
}

func (repo *requestRepository) GetRequest(ctx context.Context, id string) (request.Request, error) {
	var m requestModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return request.Request{}, request.ErrNotFound
	}
	if err != nil {
		return request.Request{}, errors.Wrap(err, "selecting request")
	}
	return m.toRequest(), nil
}

func (repo *requestRepository) QueryRequests(ctx context.Context, filter request.QueryFilter) ([]request.Request, error) {
	q := repo.db.WithContext(ctx).Model(&requestModel{})
	if filter.TeacherID != "" {
		q = q.Where("teacher_id = ?", filter.TeacherID)
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		q = q.Where("request_type IN ?", types)
	}

	allowed := make(map[string]bool, len(request.OrderingFields))
	for _, col := range request.OrderingFields {
		allowed[col] = true
	}
	for _, ord := range filter.Orderings {
		if !allowed[ord.Field] {
			continue
		}
		if ord.Field == "name" {
			ord.Field = "LOWER(name)"
		}
		q = q.Order(ord.String())
	}

	var models []requestModel
	// rowid keeps insertion order among equal timestamps
	if err := q.Order("created_at ASC").Order("rowid ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "selecting requests")
	}
	reqs := make([]request.Request, 0, len(models))
	for _, m := range models {
		reqs = append(reqs, m.toRequest())
	}
	return reqs, nil
}

func (repo *requestRepository) UpdateRequestResult(ctx context.Context, id string, result request.Result, decidedAt time.Time) (request.Request, error) {
	decidedAt = decidedAt.UTC()
	res := repo.db.WithContext(ctx).Model(&requestModel{}).Where("id = ?", id).
		Where("(result = ? OR result = '')", request.ResultPending).
		Updates(map[string]interface{}{"result": string(result), "decided_at": decidedAt})
	if res.Error != nil {
		return request.Request{}, errors.Wrap(res.Error, "updating request")
	}
	if res.RowsAffected == 0 {
		if _, err := repo.GetRequest(ctx, id); err != nil {
			return request.Request{}, err
		}
		return request.Request{}, request.ErrAlreadyDecided
	}
	return repo.GetRequest(ctx, id)
}
