package notices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const (
	// DefaultKeyPrefix namespaces notice keys.
	DefaultKeyPrefix = "primrose:notices"
	// DefaultTTL bounds how long an unattended notice is kept.
	DefaultTTL = 24 * time.Hour
)

// RedisBoard stores each notice under its own key with a TTL, plus a sorted
// set of tokens scored by timestamp for ordered listing. Index entries whose
// key has expired are pruned on read.
type RedisBoard struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger ectologger.Logger
}

func NewRedisBoard(rdb *redis.Client, prefix string, ttl time.Duration, logger ectologger.Logger) *RedisBoard {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisBoard{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (b *RedisBoard) indexKey() string {
	return b.prefix + ":index"
}

func (b *RedisBoard) noticeKey(token string) string {
	return b.prefix + ":" + token
}

func (b *RedisBoard) Record(ctx context.Context, notice models.RecoverableError) error {
	ctx, span := tracing.StartSpan(ctx, "notices.RedisBoard.Record")
	defer span.End()

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	token := notice.Token.String()
	pipe := b.rdb.TxPipeline()
	pipe.Set(ctx, b.noticeKey(token), data, b.ttl)
	pipe.ZAdd(ctx, b.indexKey(), redis.Z{Score: float64(notice.Token.Timestamp.UnixNano()), Member: token})
	if _, err := pipe.Exec(ctx); err != nil {
		b.logger.WithContext(ctx).WithError(err).WithField("token", token).Error("Failed to record notice")
		return fmt.Errorf("failed to record notice: %w", err)
	}
	return nil
}

func (b *RedisBoard) List(ctx context.Context) ([]models.RecoverableError, error) {
	ctx, span := tracing.StartSpan(ctx, "notices.RedisBoard.List")
	defer span.End()

	tokens, err := b.rdb.ZRange(ctx, b.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	if len(tokens) == 0 {
		return []models.RecoverableError{}, nil
	}

	keys := make([]string, len(tokens))
	for i, token := range tokens {
		keys[i] = b.noticeKey(token)
	}
	values, err := b.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load notices: %w", err)
	}

	out := make([]models.RecoverableError, 0, len(values))
	var stale []any
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			stale = append(stale, tokens[i])
			continue
		}
		var notice models.RecoverableError
		if err := json.Unmarshal([]byte(s), &notice); err != nil {
			b.logger.WithContext(ctx).WithError(err).WithField("token", tokens[i]).Warn("Dropping unreadable notice")
			stale = append(stale, tokens[i])
			continue
		}
		out = append(out, notice)
	}

	if len(stale) > 0 {
		if err := b.rdb.ZRem(ctx, b.indexKey(), stale...).Err(); err != nil {
			b.logger.WithContext(ctx).WithError(err).Warn("Failed to prune notice index")
		}
	}
	return out, nil
}

func (b *RedisBoard) Get(ctx context.Context, token string) (*models.RecoverableError, error) {
	data, err := b.rdb.Get(ctx, b.noticeKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}

	var notice models.RecoverableError
	if err := json.Unmarshal(data, &notice); err != nil {
		return nil, fmt.Errorf("failed to decode notice: %w", err)
	}
	return &notice, nil
}

func (b *RedisBoard) Dismiss(ctx context.Context, token string) error {
	pipe := b.rdb.TxPipeline()
	del := pipe.Del(ctx, b.noticeKey(token))
	pipe.ZRem(ctx, b.indexKey(), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to dismiss notice: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
