package notices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Ramsey-B/primrose/pkg/models"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func notice(kind models.Kind, offset time.Duration) models.RecoverableError {
	return models.RecoverableError{
		Kind:    kind,
		Message: "failed to load " + string(kind),
		Token:   models.NewRetryToken(kind, base.Add(offset)),
	}
}

func tokens(list []models.RecoverableError) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Token.String()
	}
	return out
}

// exerciseBoard runs the behavior every Board implementation shares.
func exerciseBoard(t *testing.T, board Board) {
	ctx := context.Background()
	tours := notice(models.KindTours, 2*time.Second)
	contact := notice(models.KindContact, time.Second)
	contact.VendorID = "7"
	contact.TourID = "12"

	require.NoError(t, board.Record(ctx, tours))
	require.NoError(t, board.Record(ctx, contact))

	list, err := board.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{contact.Token.String(), tours.Token.String()}, tokens(list))

	got, err := board.Get(ctx, contact.Token.String())
	require.NoError(t, err)
	assert.Equal(t, models.KindContact, got.Kind)
	assert.Equal(t, "7", got.VendorID)
	assert.Equal(t, "12", got.TourID)
	assert.Equal(t, contact.Message, got.Message)

	require.NoError(t, board.Dismiss(ctx, contact.Token.String()))
	assert.ErrorIs(t, board.Dismiss(ctx, contact.Token.String()), ErrNotFound)

	_, err = board.Get(ctx, contact.Token.String())
	assert.ErrorIs(t, err, ErrNotFound)

	list, err = board.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{tours.Token.String()}, tokens(list))
}

func TestMemoryBoard(t *testing.T) {
	exerciseBoard(t, NewMemoryBoard(0))
}

func TestMemoryBoardExpiresNotices(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard(time.Minute)
	now := base
	board.now = func() time.Time { return now }

	n := notice(models.KindVendors, 0)
	require.NoError(t, board.Record(ctx, n))

	list, err := board.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	now = now.Add(2 * time.Minute)
	list, err = board.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, board.Dismiss(ctx, n.Token.String()), ErrNotFound)
}

func TestMemoryBoardRecordReplacesSameToken(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard(0)
	n := notice(models.KindTours, 0)
	require.NoError(t, board.Record(ctx, n))
	n.Message = "updated"
	require.NoError(t, board.Record(ctx, n))

	list, err := board.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "updated", list[0].Message)
}

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisBoard(t *testing.T) {
	rdb := startRedis(t)
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	t.Run("shared behavior", func(t *testing.T) {
		exerciseBoard(t, NewRedisBoard(rdb, "test:shared", time.Hour, logger))
	})

	t.Run("prunes expired index entries", func(t *testing.T) {
		ctx := context.Background()
		board := NewRedisBoard(rdb, "test:prune", time.Hour, logger)
		n := notice(models.KindListings, 0)
		require.NoError(t, board.Record(ctx, n))

		// Simulate TTL expiry of the notice key.
		require.NoError(t, rdb.Del(ctx, board.noticeKey(n.Token.String())).Err())

		list, err := board.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		count, err := rdb.ZCard(ctx, board.indexKey()).Result()
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
