package sqlite

import (
	"testing"

	"github.com/ahvonen/gymlog/internal/testhelpers"
)

func TestDatabase_migrate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name              string
		schemaDefinitions []string
		testQueries       []string
		wantErr           bool
	}{
		{
			name:              "empty schema",
			schemaDefinitions: []string{""},
			testQueries:       []string{"SELECT * FROM sqlite_schema"},
			wantErr:           false,
		},
		{
			name:              "create table",
			schemaDefinitions: []string{"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)"},
			testQueries: []string{
				"INSERT INTO test (name) VALUES ('test')",
				"SELECT * FROM test",
			},
			wantErr: false,
		},
		{
			name: "drop table",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"",
			},
			testQueries: []string{"INSERT INTO test (name) VALUES ('test')"},
			wantErr:     true,
		},
		{
			name: "add column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT, extra TEXT)",
			},
			testQueries: []string{
				"INSERT INTO test (name, extra) VALUES ('test', 'extra')",
			},
			wantErr: false,
		},
		{
			name: "drop column",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT, extra TEXT)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
			},
			testQueries: []string{
				"INSERT INTO test (name, extra) VALUES ('test', 'extra')",
			},
			wantErr: true,
		},
		{
			name: "add index",
			schemaDefinitions: []string{
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)",
				"CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT);" +
					"CREATE INDEX idx_test_name ON test (name)",
			},
			testQueries: []string{
				"SELECT name FROM sqlite_schema WHERE type = 'index' AND name = 'idx_test_name'",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

			db, err := connect(ctx, ":memory:", logger)
			if err != nil {
				t.Fatalf("connect: %v", err)
			}
			t.Cleanup(func() {
				if closeErr := db.Close(); closeErr != nil {
					t.Errorf("close database: %v", closeErr)
				}
			})

			for _, schemaDefinition := range tt.schemaDefinitions {
				if err = db.migrateTo(ctx, schemaDefinition); err != nil {
					t.Fatalf("migrateTo: %v", err)
				}
			}

			var queryErr error
			for _, query := range tt.testQueries {
				if _, err = db.ReadWrite.ExecContext(ctx, query); err != nil {
					queryErr = err
				}
			}

			if tt.wantErr && queryErr == nil {
				t.Error("expected test query to fail, it succeeded")
			}
			if !tt.wantErr && queryErr != nil {
				t.Errorf("test query failed: %v", queryErr)
			}
		})
	}
}

func TestNewDatabase_appSchema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	for _, table := range []string{
		"app_config", "plate_options", "plan_weeks", "day_plans",
		"workout_templates", "workout_sessions", "session_entries",
		"logged_sets", "logged_set_plates", "preferences",
	} {
		var name string
		err = db.ReadOnly.QueryRowContext(ctx,
			"SELECT name FROM sqlite_schema WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}
