package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"gambler/challenge-service/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// challengeTables lists every table the migrations create, children first
var challengeTables = []string{
	"rating_history",
	"rating_records",
	"ledger_entries",
	"pending_withdrawals",
	"challenges",
	"accounts",
}

// TestDatabase is a migrated PostgreSQL container owned by one test
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// SetupTestDatabase starts a PostgreSQL container, applies the embedded migrations and
// connects a pool. Integration tests are skipped under -short.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("challenges_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"test":      "challenge-repository",
			"test-name": t.Name(),
			"cleanup":   "auto",
		}),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() {
		testDB.terminate(t)
	})

	testDB.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrationsWithURL(testDB.URL))

	testDB.DB, err = database.NewConnection(ctx, testDB.URL)
	require.NoError(t, err)

	return testDB
}

// Reset empties every table so one container can serve several subtests
func (td *TestDatabase) Reset(t *testing.T) {
	t.Helper()
	_, err := td.DB.Exec(context.Background(),
		"TRUNCATE "+strings.Join(challengeTables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

// terminate closes the pool and removes the container. A panic from the
// container runtime is logged rather than failing an otherwise green test.
func (td *TestDatabase) terminate(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("recovered while terminating test container: %v", r)
		}
	}()

	if td.DB != nil {
		td.DB.Close()
	}
	if td.Container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate test container: %v", err)
	}
}
