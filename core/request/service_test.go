package request_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	"github.com/ahmedtelkodsh/geniussmart/services/email"
	"github.com/ahmedtelkodsh/geniussmart/services/logger"
	"github.com/ahmedtelkodsh/geniussmart/storage/database/inmem"
)

var (
	clock   = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	teacher = core.Session{ID: "t-1", Name: "Amira Hassan", Role: "teacher"}
)

func setup(t *testing.T) (request.Service, request.Repository, *emailsvc.ConsoleServiceMock) {
	conf := &core.Config{AppName: "Genius Smart", TestMode: true}
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(false), conf, "test")
	core.ParseEmailTemplates(assets.FS, "http://localhost:3000", logger)

	repo := inmemdb.NewRequestRepository(inmemdb.Open())
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svc := request.NewServiceMock(repo, mailSvc, func() time.Time { return clock })
	return svc, repo, mailSvc
}

func createRequest(t *testing.T, svc request.Service, sess core.Session, typ request.Type, applied string) request.Request {
	req, err := svc.Create(context.Background(), sess, "amira@school.test", request.NewRequest{
		RequestType: typ,
		AppliedDate: applied,
		Reason:      "family matter",
	})
	require.NoError(t, err)
	return req
}

func TestNewRequest_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	request.InitValidators(validate, translator)

	tests := []struct {
		name       string
		data       request.NewRequest
		wantFields []string
	}{
		{
			name: "valid",
			data: request.NewRequest{RequestType: request.TypeEarlyLeave, AppliedDate: "2026-10-17T12:00:00Z", Reason: "doctor"},
		},
		{
			name:       "unknown type",
			data:       request.NewRequest{RequestType: "Holiday", AppliedDate: "2026-10-17", Reason: "trip"},
			wantFields: []string{"requestType"},
		},
		{
			name:       "bad date and blank reason",
			data:       request.NewRequest{RequestType: request.TypeAbsence, AppliedDate: "yesterday", Reason: "   "},
			wantFields: []string{"appliedDate", "reason"},
		},
		{
			name:       "missing everything",
			data:       request.NewRequest{},
			wantFields: []string{"requestType", "appliedDate", "reason"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var fields []string
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %T", err)
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
				assert.NotEmpty(t, fe.Translate(translator))
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestDecision_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	tests := []struct {
		result  request.Result
		wantErr bool
	}{
		{result: request.ResultApproved},
		{result: request.ResultRejected},
		{result: request.ResultPending, wantErr: true},
		{result: "approved", wantErr: true},
		{result: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.result), func(t *testing.T) {
			err := request.Decision{Result: tt.result}.Validate(validate)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %T", err)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "result", vErrs[0].Field())
		})
	}
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := setup(t)

	req := createRequest(t, svc, teacher, request.TypeLateArrival, "2026-10-16")
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, teacher.ID, req.TeacherID)
	assert.Equal(t, teacher.Name, req.Name)
	assert.Equal(t, request.ResultPending, req.Result)
	assert.True(t, clock.Equal(req.CreatedAt))
	assert.Nil(t, req.DecidedAt)

	got, err := repo.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestService_Buckets(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	// stored directly: bad dates survive storage and end up delayed
	_, err := repo.CreateRequest(ctx, request.Request{ID: "bad", TeacherID: teacher.ID, RequestType: request.TypeAbsence, AppliedDate: "garbage"})
	require.NoError(t, err)
	today := createRequest(t, svc, teacher, request.TypeAbsence, "2026-10-17")
	week := createRequest(t, svc, teacher, request.TypeEarlyLeave, "2026-10-13")
	old := createRequest(t, svc, teacher, request.TypeAbsence, "2026-08-01")

	b, err := svc.Buckets(ctx, request.QueryFilter{}, clock)
	require.NoError(t, err)
	assert.Equal(t, []request.Request{today}, b.Today)
	assert.Equal(t, []request.Request{week}, b.ThisWeek)
	assert.Empty(t, b.ThisMonth)
	require.Len(t, b.Delayed, 2)
	assert.Equal(t, "bad", b.Delayed[0].ID)
	assert.Equal(t, old.ID, b.Delayed[1].ID)

	b, err = svc.Buckets(ctx, request.QueryFilter{Types: []request.Type{request.TypeEarlyLeave}}, clock)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []request.Request{week}, b.ThisWeek)
}

func TestService_History(t *testing.T) {
	svc, _, _ := setup(t)
	other := core.Session{ID: "t-2", Name: "Omar Said", Role: "teacher"}

	first := createRequest(t, svc, teacher, request.TypeAbsence, "2026-10-01")
	createRequest(t, svc, other, request.TypeAbsence, "2026-10-02")
	second := createRequest(t, svc, teacher, request.TypeLateArrival, "2026-10-03")

	hist, err := svc.History(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{hist[0].ID, hist[1].ID})
}

func TestService_Decide(t *testing.T) {
	svc, _, mailSvc := setup(t)
	ctx := context.Background()
	req := createRequest(t, svc, teacher, request.TypeAuthorizedAbsence, "2026-10-20")

	tests := []struct {
		name      string
		id        string
		decision  request.Decision
		wantErr   error
		wantValid bool
	}{
		{name: "unknown id", id: "nope", decision: request.Decision{Result: request.ResultApproved}, wantErr: request.ErrNotFound},
		{name: "approve", id: req.ID, decision: request.Decision{Result: request.ResultApproved}},
		{name: "already decided", id: req.ID, decision: request.Decision{Result: request.ResultRejected}, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Decide(ctx, tt.id, tt.decision)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantValid:
				_, ok := err.(*core.ValidationError)
				assert.True(t, ok, "got %v", err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.decision.Result, got.Result)
				require.NotNil(t, got.DecidedAt)
				assert.True(t, clock.Equal(*got.DecidedAt))
			}
		})
	}

	assert.Empty(t, mailSvc.Errors())
	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "amira@school.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Authorized Absence")
	assert.Contains(t, sent[0].TextContent, "Approved")
	assert.Contains(t, sent[0].HTMLContent, "http://localhost:3000/teacher/history")
}

// slowReadRepository widens the gap between reading a request and deciding it.
type slowReadRepository struct {
	request.Repository
}

func (repo slowReadRepository) GetRequest(ctx context.Context, id string) (request.Request, error) {
	time.Sleep(5 * time.Millisecond)
	return repo.Repository.GetRequest(ctx, id)
}

func TestService_DecideConcurrently(t *testing.T) {
	_, repo, mailSvc := setup(t)
	svc := request.NewServiceMock(slowReadRepository{repo}, mailSvc, func() time.Time { return clock })
	req := createRequest(t, svc, teacher, request.TypeAbsence, "2026-10-20")

	results := []request.Result{request.ResultApproved, request.ResultRejected}
	errs := make([]error, len(results))
	var wg sync.WaitGroup
	for i, result := range results {
		wg.Add(1)
		go func(i int, result request.Result) {
			defer wg.Done()
			_, errs[i] = svc.Decide(context.Background(), req.ID, request.Decision{Result: result})
		}(i, result)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, mailSvc.SentMessages(), 1)
}
