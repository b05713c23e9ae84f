package gormrepos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // every connection gets its own :memory: database
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRequestRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRequestRepository(openTestDB(t))
	require.NoError(t, err)
	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	seed := []request.Request{
		{TeacherID: "t-1", Name: "Zaid", Email: "zaid@school.test", RequestType: request.TypeAbsence, AppliedDate: "2026-10-03", CreatedAt: created},
		{TeacherID: "t-2", Name: "amal", RequestType: request.TypeLateArrival, AppliedDate: "2026-10-01", CreatedAt: created.Add(time.Hour)},
		{TeacherID: "t-1", Name: "Basel", RequestType: request.TypeEarlyLeave, AppliedDate: "not a date", CreatedAt: created.Add(2 * time.Hour)},
	}
	var stored []request.Request
	for _, req := range seed {
		req, err := repo.CreateRequest(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, req.ID)
		assert.Equal(t, request.ResultPending, req.Result)
		stored = append(stored, req)
	}

	names := func(reqs []request.Request) []string {
		out := make([]string, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter request.QueryFilter
		want   []string
	}{
		{name: "all, creation order", want: []string{"Zaid", "amal", "Basel"}},
		{name: "by teacher", filter: request.QueryFilter{TeacherID: "t-1"}, want: []string{"Zaid", "Basel"}},
		{name: "by types", filter: request.QueryFilter{Types: []request.Type{request.TypeLateArrival, request.TypeEarlyLeave}}, want: []string{"amal", "Basel"}},
		{
			name:   "by name",
			filter: request.QueryFilter{Orderings: core.ParseOrderings("name", request.OrderingFields)},
			want:   []string{"amal", "Basel", "Zaid"},
		},
		{
			name:   "by created desc",
			filter: request.QueryFilter{Orderings: core.ParseOrderings("-createdAt", request.OrderingFields)},
			want:   []string{"Basel", "amal", "Zaid"},
		},
		{
			name:   "unknown column ignored",
			filter: request.QueryFilter{Orderings: []core.DBOrdering{{Field: "reason; DROP TABLE request"}}},
			want:   []string{"Zaid", "amal", "Basel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryRequests(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("get & update", func(t *testing.T) {
		_, err := repo.GetRequest(ctx, "missing")
		assert.Equal(t, request.ErrNotFound, err)

		_, err = repo.UpdateRequestResult(ctx, "missing", request.ResultApproved, created)
		assert.Equal(t, request.ErrNotFound, err)

		got, err := repo.GetRequest(ctx, stored[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "zaid@school.test", got.Email)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.Nil(t, got.DecidedAt)

		decided := created.Add(24 * time.Hour)
		upd, err := repo.UpdateRequestResult(ctx, stored[2].ID, request.ResultApproved, decided)
		require.NoError(t, err)
		assert.Equal(t, request.ResultApproved, upd.Result)
		assert.Equal(t, "not a date", upd.AppliedDate)
		assert.Empty(t, upd.Email)
		require.NotNil(t, upd.DecidedAt)
		assert.True(t, decided.Equal(*upd.DecidedAt))

		_, err = repo.UpdateRequestResult(ctx, stored[2].ID, request.ResultRejected, decided.Add(time.Hour))
		assert.Equal(t, request.ErrAlreadyDecided, err)
		got, err = repo.GetRequest(ctx, stored[2].ID)
		require.NoError(t, err)
		assert.Equal(t, request.ResultApproved, got.Result)
		assert.True(t, decided.Equal(*got.DecidedAt))
	})
}

func TestRequestRepository_ConcurrentDecisions(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRequestRepository(openTestDB(t))
	require.NoError(t, err)
	req, err := repo.CreateRequest(ctx, request.Request{TeacherID: "t-1", Name: "Zaid", RequestType: request.TypeAbsence, AppliedDate: "2026-10-03"})
	require.NoError(t, err)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		decided []request.Result
	)
	for i := 0; i < n; i++ {
		result := request.ResultApproved
		if i%2 == 1 {
			result = request.ResultRejected
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			upd, err := repo.UpdateRequestResult(ctx, req.ID, result, time.Now())
			if err != nil {
				assert.Equal(t, request.ErrAlreadyDecided, err)
				return
			}
			mu.Lock()
			decided = append(decided, upd.Result)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, decided, 1)
	got, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, decided[0], got.Result)
}
