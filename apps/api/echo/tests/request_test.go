package tests

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ahmedtelkodsh/geniussmart/apps/api/echo"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

func seed(t *testing.T, repo request.Repository, reqs ...request.Request) []request.Request {
	var out []request.Request
	for _, req := range reqs {
		req, err := repo.CreateRequest(context.Background(), req)
		require.NoError(t, err)
		out = append(out, req)
	}
	return out
}

func Test_requestApi_create(t *testing.T) {
	f := setup(t)
	teacherToken := getToken(t, f.conf, teacher, "amira@school.test")
	managerToken := getToken(t, f.conf, manager)

	valid := marchallObj(t, request.NewRequest{
		RequestType: request.TypeLateArrival,
		AppliedDate: "2026-10-17",
		Duration:    "1 hour",
		Reason:      " traffic ",
	})

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     "/v1/requests",
			body:     valid,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			method:   http.MethodPost,
			path:     "/v1/requests",
			body:     valid,
			token:    "not.a.jwt",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name:     "manager cannot apply",
			method:   http.MethodPost,
			path:     "/v1/requests",
			body:     valid,
			token:    managerToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/v1/requests",
			body:     []byte(`{"requestType": "Holiday", "appliedDate": "yesterday", "reason": "  "}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"requestType": "must be one of: Absence, Authorized Absence, Early Leave, Late Arrival",
				"appliedDate": "must be an ISO-8601 date",
				"reason":      "this field cannot be blank",
			}),
		},
	}
	f.run(t, tests)

	t.Run("created", func(t *testing.T) {
		rec := f.serve(newAuthRequest(http.MethodPost, "/v1/requests", teacherToken, valid))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var req request.Request
		unmarshall(t, rec, &req)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, teacher.ID, req.TeacherID)
		assert.Equal(t, teacher.Name, req.Name)
		assert.Equal(t, "amira@school.test", req.Email)
		assert.Equal(t, request.TypeLateArrival, req.RequestType)
		assert.Equal(t, "traffic", req.Reason)
		assert.Equal(t, request.ResultPending, req.Result)
		assert.True(t, clock.Equal(req.CreatedAt))

		stored, err := f.repo.GetRequest(context.Background(), req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, stored.ID)
	})
}

func Test_requestApi_history(t *testing.T) {
	f := setup(t)
	colleague := core.Session{ID: "t-2", Name: "Omar Said", Role: RoleTeacher}
	reqs := seed(t, f.repo,
		request.Request{TeacherID: teacher.ID, Name: teacher.Name, RequestType: request.TypeAbsence, AppliedDate: "2026-10-01", CreatedAt: clock.AddDate(0, 0, -16)},
		request.Request{TeacherID: colleague.ID, Name: colleague.Name, RequestType: request.TypeAbsence, AppliedDate: "2026-10-02", CreatedAt: clock.AddDate(0, 0, -15)},
		request.Request{TeacherID: teacher.ID, Name: teacher.Name, RequestType: request.TypeEarlyLeave, AppliedDate: "2026-10-15", CreatedAt: clock.AddDate(0, 0, -2)},
	)

	tests := []httpTest{
		{
			name:     "newest first",
			method:   http.MethodGet,
			path:     "/v1/requests/mine",
			token:    getToken(t, f.conf, teacher),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []request.Request{reqs[2], reqs[0]}),
		},
		{
			name:     "empty",
			method:   http.MethodGet,
			path:     "/v1/requests/mine",
			token:    getToken(t, f.conf, core.Session{ID: "t-3", Name: "New", Role: RoleTeacher}),
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "managers have no history",
			method:   http.MethodGet,
			path:     "/v1/requests/mine",
			token:    getToken(t, f.conf, manager),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	f.run(t, tests)
}

func Test_requestApi_buckets(t *testing.T) {
	f := setup(t)
	managerToken := getToken(t, f.conf, manager)
	seed(t, f.repo,
		request.Request{TeacherID: "t-1", Name: "Today", RequestType: request.TypeAbsence, AppliedDate: "2026-10-17"},
		request.Request{TeacherID: "t-2", Name: "Week", RequestType: request.TypeLateArrival, AppliedDate: "2026-10-12"},
		request.Request{TeacherID: "t-1", Name: "Month", RequestType: request.TypeEarlyLeave, AppliedDate: "2026-10-02"},
		request.Request{TeacherID: "t-2", Name: "Old", RequestType: request.TypeAbsence, AppliedDate: "2026-08-20"},
		request.Request{TeacherID: "t-1", Name: "Broken", RequestType: request.TypeLateArrival, AppliedDate: "someday"},
	)

	names := func(reqs []request.Request) []string {
		out := []string{}
		for _, r := range reqs {
			out = append(out, r.Name)
		}
		return out
	}

	tests := []struct {
		name          string
		query         string
		wantToday     []string
		wantThisWeek  []string
		wantThisMonth []string
		wantDelayed   []string
	}{
		{
			name:          "all",
			wantToday:     []string{"Today"},
			wantThisWeek:  []string{"Week"},
			wantThisMonth: []string{"Month"},
			wantDelayed:   []string{"Old", "Broken"},
		},
		{
			name:          "by type",
			query:         "?type=Absence",
			wantToday:     []string{"Today"},
			wantThisWeek:  []string{},
			wantThisMonth: []string{},
			wantDelayed:   []string{"Old"},
		},
		{
			name:          "by teacher & ordering",
			query:         "?teacherId=t-1&ordering=-name",
			wantToday:     []string{"Today"},
			wantThisWeek:  []string{},
			wantThisMonth: []string{"Month"},
			wantDelayed:   []string{"Broken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(newAuthRequest(http.MethodGet, "/v1/requests"+tt.query, managerToken))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var b request.Buckets
			unmarshall(t, rec, &b)
			assert.Equal(t, tt.wantToday, names(b.Today))
			assert.Equal(t, tt.wantThisWeek, names(b.ThisWeek))
			assert.Equal(t, tt.wantThisMonth, names(b.ThisMonth))
			assert.Equal(t, tt.wantDelayed, names(b.Delayed))
		})
	}

	f.run(t, []httpTest{
		{
			name:     "unknown type",
			method:   http.MethodGet,
			path:     "/v1/requests?type=Holiday",
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": `unknown request type: "Holiday"`}),
		},
		{
			name:     "teachers cannot list",
			method:   http.MethodGet,
			path:     "/v1/requests",
			token:    getToken(t, f.conf, teacher),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}

func Test_requestApi_retrieveAndDecide(t *testing.T) {
	f := setup(t)
	managerToken := getToken(t, f.conf, manager)
	reqs := seed(t, f.repo,
		request.Request{TeacherID: teacher.ID, Name: teacher.Name, Email: "amira@school.test", RequestType: request.TypeAbsence, AppliedDate: "2026-10-20", Reason: "wedding"},
		request.Request{TeacherID: "t-2", Name: "Omar Said", RequestType: request.TypeLateArrival, AppliedDate: "2026-10-16"},
	)

	approved := reqs[0]
	approved.Result = request.ResultApproved
	decidedAt := clock
	approved.DecidedAt = &decidedAt

	tests := []httpTest{
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/requests/" + reqs[1].ID,
			token:    managerToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, reqs[1]),
		},
		{
			name:     "retrieve unknown",
			method:   http.MethodGet,
			path:     "/v1/requests/nope",
			token:    managerToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "request not found"}),
		},
		{
			name:     "invalid decision",
			method:   http.MethodPut,
			path:     "/v1/requests/" + reqs[0].ID + "/decision",
			body:     []byte(`{"result": "Pending"}`),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "lowercase decision",
			method:   http.MethodPut,
			path:     "/v1/requests/" + reqs[0].ID + "/decision",
			body:     []byte(`{"result": "approved"}`),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "approve",
			method:   http.MethodPut,
			path:     "/v1/requests/" + reqs[0].ID + "/decision",
			body:     marchallObj(t, request.Decision{Result: request.ResultApproved}),
			token:    managerToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, approved),
		},
		{
			name:     "already decided",
			method:   http.MethodPut,
			path:     "/v1/requests/" + reqs[0].ID + "/decision",
			body:     marchallObj(t, request.Decision{Result: request.ResultRejected}),
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"result": "request has already been decided"}),
		},
		{
			name:     "decide unknown",
			method:   http.MethodPut,
			path:     "/v1/requests/nope/decision",
			body:     marchallObj(t, request.Decision{Result: request.ResultRejected}),
			token:    managerToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "request not found"}),
		},
		{
			name:     "teachers cannot decide",
			method:   http.MethodPut,
			path:     "/v1/requests/" + reqs[1].ID + "/decision",
			body:     marchallObj(t, request.Decision{Result: request.ResultApproved}),
			token:    getToken(t, f.conf, teacher),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	f.run(t, tests)

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "amira@school.test", sent[0].To[0].Address)
	assert.Contains(t, sent[0].Subject, "Approved")
}

func Test_requestApi_export(t *testing.T) {
	f := setup(t)
	managerToken := getToken(t, f.conf, manager)
	seed(t, f.repo,
		request.Request{TeacherID: "t-1", Name: "Amira Hassan", RequestType: request.TypeAbsence, AppliedDate: "2026-10-17"},
	)

	tests := []struct {
		name       string
		query      string
		wantType   string
		wantPrefix string
		wantFile   string
	}{
		{
			name:       "excel by default",
			wantType:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantPrefix: "PK",
			wantFile:   "requests-2026-10-17.xlsx",
		},
		{
			name:       "arabic excel",
			query:      "?format=xlsx&lang=ar",
			wantType:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			wantPrefix: "PK",
			wantFile:   "requests-2026-10-17.xlsx",
		},
		{
			name:       "pdf",
			query:      "?format=pdf&lang=ar",
			wantType:   "application/pdf",
			wantPrefix: "%PDF-",
			wantFile:   "requests-2026-10-17.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(newAuthRequest(http.MethodGet, "/v1/requests/export"+tt.query, managerToken))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.wantFile)
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte(tt.wantPrefix)))
		})
	}

	f.run(t, []httpTest{
		{
			name:     "unknown format",
			method:   http.MethodGet,
			path:     "/v1/requests/export?format=csv",
			token:    managerToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"format": "must be one of: xlsx, pdf"}),
		},
	})
}
