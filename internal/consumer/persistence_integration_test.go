//go:build integration
// +build integration

package consumer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/litterbox/internal/events"
)

func TestPersistenceHandlerStoresVisit(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	seedDevice(t, ctx, pool)
	handler := NewPersistenceHandler(pool)

	visit := events.VisitRecorded{
		EventID:     "11111111-1111-1111-1111-111111111111",
		DeviceID:    "device-abc",
		EnterTime:   time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC),
		ExitTime:    time.Date(2024, 3, 1, 8, 19, 0, 0, time.UTC),
		WeightEnter: 32.4,
		WeightExit:  22.5,
	}
	msg := Message{
		EventType: events.TypeVisitRecorded,
		SchemaID:  42,
		Topic:     events.TopicVisits,
		Offset:    5,
		Visit:     visit,
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, handler.Handle(ctx, msg))
	// Replaying the same offset must not duplicate the row.
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM litterbox_usage_data`).Scan(&count))
	require.Equal(t, 1, count)

	var weightEnter, weightExit float64
	err := pool.QueryRow(ctx,
		`SELECT weight_enter, weight_exit FROM litterbox_usage_data WHERE id = $1`, visit.EventID,
	).Scan(&weightEnter, &weightExit)
	require.NoError(t, err)
	require.InDelta(t, 32.4, weightEnter, 0.001)
	require.InDelta(t, 22.5, weightExit, 0.001)
}

func TestPersistenceHandlerRejectsUnknownDevice(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewPersistenceHandler(pool)

	visit := events.VisitRecorded{
		EventID:   "22222222-2222-2222-2222-222222222222",
		DeviceID:  "never-registered",
		EnterTime: time.Now().UTC(),
		ExitTime:  time.Now().UTC().Add(3 * time.Minute),
	}
	err := handler.Handle(ctx, Message{
		EventType: events.TypeVisitRecorded,
		Topic:     events.TopicVisits,
		Visit:     visit,
		Timestamp: time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrUnknownDevice)
}

func seedDevice(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash) VALUES
			('u-1', 'alice', 'alice@example.com', 'x');
		INSERT INTO cats (id, owner_id, name) VALUES
			('c-1', 'u-1', 'Mochi');
		INSERT INTO litterboxes (id, cat_id, name) VALUES
			('lb-1', 'c-1', 'Hallway');
		INSERT INTO edge_devices (id, litterbox_id, name) VALUES
			('device-abc', 'lb-1', 'box-a');
	`)
	require.NoError(t, err)
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("litterbox"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	migrationsPath := resolvePath(t, "../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, file := range files {
		content, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)
		_, execErr := pool.Exec(ctx, string(content))
		require.NoErrorf(t, execErr, "execute migration %s", file)
	}
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}
