package request

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/ahmedtelkodsh/geniussmart/core"
)

var (
	// errors
	ErrNotFound       = errors.New("request not found")
	ErrAlreadyDecided = errors.New("request already decided")

	decisionTemplate = "request_decision"
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequest(ctx context.Context, id string) (Request, error)
		// QueryRequests applies AND operation on available QueryFilter fields.
		// Requests are returned by creation date unless orderings are given.
		QueryRequests(ctx context.Context, filter QueryFilter) ([]Request, error)
		// UpdateRequestResult decides a pending request; a decided one yields ErrAlreadyDecided.
		UpdateRequestResult(ctx context.Context, id string, result Result, decidedAt time.Time) (Request, error)
	}

	Service interface {
		Create(ctx context.Context, sess core.Session, email string, nr NewRequest) (Request, error)
		Get(ctx context.Context, id string) (Request, error)
		Query(ctx context.Context, filter QueryFilter) ([]Request, error)
		Buckets(ctx context.Context, filter QueryFilter, now time.Time) (Buckets, error)
		History(ctx context.Context, teacherID string) ([]Request, error)
		Decide(ctx context.Context, id string, d Decision) (Request, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		nowFunc func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		nowFunc: time.Now,
	}
}

func (svc *service) Create(ctx context.Context, sess core.Session, email string, nr NewRequest) (Request, error) {
	req := Request{
		TeacherID:   sess.ID,
		Name:        sess.Name,
		Email:       core.CleanString(email, true /* lower */),
		RequestType: nr.RequestType,
		AppliedDate: nr.AppliedDate,
		Duration:    nr.Duration,
		Reason:      nr.Reason,
		Result:      ResultPending,
		CreatedAt:   svc.nowFunc().UTC(),
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *service) Get(ctx context.Context, id string) (Request, error) {
	return svc.repo.GetRequest(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter)
}

func (svc *service) Buckets(ctx context.Context, filter QueryFilter, now time.Time) (Buckets, error) {
	reqs, err := svc.repo.QueryRequests(ctx, filter)
	if err != nil {
		return Buckets{}, errors.Wrap(err, "querying requests")
	}
	return Bucketize(FilterByType(reqs, filter.Types...), now), nil
}

func (svc *service) History(ctx context.Context, teacherID string) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, QueryFilter{
		TeacherID: teacherID,
		Orderings: []core.DBOrdering{{Field: "created_at", Ascending: false}},
	})
}

func (svc *service) Decide(ctx context.Context, id string, d Decision) (Request, error) {
	req, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !req.IsPending() {
		return Request{}, core.NewValidationError(nil, core.FieldError{Field: "result", Error: alreadyDecidedText})
	}

	req, err = svc.repo.UpdateRequestResult(ctx, id, d.Result, svc.nowFunc().UTC())
	switch {
	case errors.Is(err, ErrAlreadyDecided):
		return Request{}, core.NewValidationError(nil, core.FieldError{Field: "result", Error: alreadyDecidedText})
	case err != nil:
		return Request{}, errors.Wrap(err, "updating request result")
	}
	svc.sendDecisionMail(req)
	return req, nil
}

func (svc *service) sendDecisionMail(req Request) {
	if svc.mailSvc == nil || req.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: req.Name, Address: req.Email}},
		Subject:      "Your " + string(req.RequestType) + " request was " + string(req.Result),
		TemplateName: decisionTemplate,
		TemplateData: req,
	})
}
