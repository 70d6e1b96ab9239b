// Package cache keeps recently read analyses in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"autodamage/models"
)

var ErrMiss = errors.New("cache miss")

const keyPrefix = "analysis:"

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger = logger.Named("cache")
	logger.Info("connected to redis", zap.String("addr", addr), zap.Duration("ttl", ttl))

	return &Cache{rdb: rdb, ttl: ttl, logger: logger}, nil
}

func Key(id string) string {
	return keyPrefix + id
}

func (c *Cache) Get(ctx context.Context, id string) (*models.Analysis, error) {
	b, err := c.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", Key(id), err)
	}

	var entry entry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key(id), err)
	}

	return entry.analysis(), nil
}

func (c *Cache) Set(ctx context.Context, analysis *models.Analysis) error {
	b, err := json.Marshal(newEntry(analysis))
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key(analysis.ID), err)
	}

	if err := c.rdb.Set(ctx, Key(analysis.ID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", Key(analysis.ID), err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", Key(id), err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// entry is the cached form of an Analysis. The summary columns are json:"-" on the
// model, so they are rebuilt from the result on the way out.
type entry struct {
	ID        string                `json:"id"`
	Filename  string                `json:"filename"`
	ImagePath string                `json:"image_path"`
	Results   models.AnalysisResult `json:"results"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func newEntry(a *models.Analysis) entry {
	return entry{
		ID:        a.ID,
		Filename:  a.Filename,
		ImagePath: a.ImagePath,
		Results:   a.Results,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (e entry) analysis() *models.Analysis {
	a := models.NewAnalysis(e.ID, e.Filename, e.ImagePath, e.Results)
	a.CreatedAt = e.CreatedAt
	a.UpdatedAt = e.UpdatedAt
	return a
}
