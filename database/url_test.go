package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		databaseName string
		expected     string
	}{
		{
			name:     "no database name returns base unchanged",
			baseURL:  "postgres://u:p@db:5432",
			expected: "postgres://u:p@db:5432",
		},
		{
			name:         "appends name and sslmode",
			baseURL:      "postgres://u:p@db:5432/",
			databaseName: "challenges",
			expected:     "postgres://u:p@db:5432/challenges?sslmode=disable",
		},
		{
			name:         "keeps existing query parameters",
			baseURL:      "postgres://u:p@db:5432?connect_timeout=5",
			databaseName: "challenges",
			expected:     "postgres://u:p@db:5432/challenges?connect_timeout=5&sslmode=disable",
		},
		{
			name:         "replaces a database already in the path",
			baseURL:      "postgres://u:p@db:5432/postgres",
			databaseName: "challenges",
			expected:     "postgres://u:p@db:5432/challenges?sslmode=disable",
		},
		{
			name:         "does not override sslmode",
			baseURL:      "postgres://u:p@db:5432?sslmode=require",
			databaseName: "challenges",
			expected:     "postgres://u:p@db:5432/challenges?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.databaseName))
		})
	}
}
