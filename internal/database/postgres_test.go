package database

import "testing"

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected int
	}{
		{"standard name", "001_initial_schema.sql", 1},
		{"later version", "012_add_indexes.sql", 12},
		{"no numeric prefix", "notes_schema.sql", 0},
		{"no underscore", "001.sql", 0},
		{"not a sql file", "001_initial_schema.sql.bak", 0},
		{"readme", "README.md", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := migrationVersion(tc.filename); got != tc.expected {
				t.Errorf("Expected version %d for %q, got %d", tc.expected, tc.filename, got)
			}
		})
	}
}
