package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by caches when the key is absent or unreadable.
var ErrCacheMiss = errors.New("cache miss")

// BarcodeCache keeps recently scanned products keyed by tenant and barcode.
type BarcodeCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error)
	Set(ctx context.Context, p *model.Product) error
	Invalidate(ctx context.Context, tenantID uuid.UUID, barcodes ...string) error
}

type redisBarcodeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBarcodeCache(rdb *redis.Client, ttl time.Duration) BarcodeCache {
	return &redisBarcodeCache{rdb: rdb, ttl: ttl}
}

func BarcodeCacheKey(tenantID uuid.UUID, barcode string) string {
	return "product:barcode:" + tenantID.String() + ":" + barcode
}

func (c *redisBarcodeCache) Get(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	b, err := c.rdb.Get(ctx, BarcodeCacheKey(tenantID, barcode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var p model.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, ErrCacheMiss
	}
	return &p, nil
}

func (c *redisBarcodeCache) Set(ctx context.Context, p *model.Product) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, BarcodeCacheKey(p.TenantID, p.Barcode), b, c.ttl).Err()
}

func (c *redisBarcodeCache) Invalidate(ctx context.Context, tenantID uuid.UUID, barcodes ...string) error {
	if len(barcodes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		keys = append(keys, BarcodeCacheKey(tenantID, b))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DraftStore persists a user's encoded cart drafts.
type DraftStore interface {
	Load(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Save(ctx context.Context, userID uuid.UUID, payload []byte) error
}

type redisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDraftStore(rdb *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(userID uuid.UUID) string { return "cart:drafts:" + userID.String() }

// Load returns nil without error when the user has no drafts.
func (s *redisDraftStore) Load(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	b, err := s.rdb.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (s *redisDraftStore) Save(ctx context.Context, userID uuid.UUID, payload []byte) error {
	return s.rdb.Set(ctx, draftKey(userID), payload, s.ttl).Err()
}
