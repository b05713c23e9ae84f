package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

func TestNewRequestRepository(t *testing.T) {
	tests := []struct {
		name    string
		db      core.DatabaseConfig
		wantErr string
	}{
		{name: "memory", db: core.DatabaseConfig{Engine: EngineMemory}},
		{name: "sqlite", db: core.DatabaseConfig{Engine: EngineSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")}},
		{name: "unknown engine", db: core.DatabaseConfig{Engine: "mongo"}, wantErr: "unknown database engine: mongo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, closer, err := NewRequestRepository(&core.Config{Database: tt.db})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closer.Close()) }()

			ctx := context.Background()
			created, err := repo.CreateRequest(ctx, request.Request{
				TeacherID:   "t-1",
				Name:        "Amira Hassan",
				RequestType: request.TypeAbsence,
				AppliedDate: "2026-10-17",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, request.ResultPending, created.Result)

			got, err := repo.GetRequest(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Amira Hassan", got.Name)
		})
	}
}
