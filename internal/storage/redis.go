package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"inventoryapi/internal/inventory"
	"inventoryapi/internal/platform/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisPrefix = "inventory"

// RedisStore implements inventory.Store on Redis: one JSON value per SKU and
// one set of SKUs per title acting as the title index.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger observability.Logger
}

func NewRedisStore(client *redis.Client, prefix string, logger observability.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) skuKey(sku string) string     { return s.prefix + ":sku:" + sku }
func (s *RedisStore) titleKey(title string) string { return s.prefix + ":title:" + title }

func (s *RedisStore) GetBySKU(ctx context.Context, sku string) (inventory.Record, error) {
	rec, found, err := s.load(ctx, sku)
	if err != nil {
		return inventory.Record{}, s.storeErr("get", err)
	}
	if !found {
		return inventory.Record{}, inventory.ErrNotFound
	}
	return rec, nil
}

// FindByTitle resolves the title set and loads the members in SKU order.
// Members whose value vanished or was retitled are skipped.
func (s *RedisStore) FindByTitle(ctx context.Context, title string) ([]inventory.Record, error) {
	skus, err := s.client.SMembers(ctx, s.titleKey(title)).Result()
	if err != nil {
		return nil, s.storeErr("smembers", err)
	}
	records := []inventory.Record{}
	if len(skus) == 0 {
		return records, nil
	}
	sort.Strings(skus)

	keys := make([]string, len(skus))
	for i, sku := range skus {
		keys[i] = s.skuKey(sku)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, s.storeErr("mget", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec inventory.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, s.storeErr("decode", fmt.Errorf("sku %s: %w", skus[i], err))
		}
		if rec.Title == title {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Put overwrites the value and moves the SKU between title sets in one
// MULTI/EXEC. Concurrent writers race with last-write-wins semantics.
func (s *RedisStore) Put(ctx context.Context, rec inventory.Record) error {
	previous, found, err := s.load(ctx, rec.SKU)
	if err != nil {
		return s.storeErr("get", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return s.storeErr("encode", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.skuKey(rec.SKU), data, 0)
		if found && previous.Title != rec.Title {
			pipe.SRem(ctx, s.titleKey(previous.Title), rec.SKU)
		}
		pipe.SAdd(ctx, s.titleKey(rec.Title), rec.SKU)
		return nil
	})
	if err != nil {
		return s.storeErr("put", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (inventory.Record, error) {
	previous, found, err := s.load(ctx, key)
	if err != nil {
		return inventory.Record{}, s.storeErr("get", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.skuKey(key))
		if found {
			pipe.SRem(ctx, s.titleKey(previous.Title), key)
		}
		return nil
	})
	if err != nil {
		return inventory.Record{}, s.storeErr("delete", err)
	}
	return inventory.Record{SKU: key}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) load(ctx context.Context, sku string) (inventory.Record, bool, error) {
	raw, err := s.client.Get(ctx, s.skuKey(sku)).Bytes()
	if errors.Is(err, redis.Nil) {
		return inventory.Record{}, false, nil
	}
	if err != nil {
		return inventory.Record{}, false, err
	}
	var rec inventory.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return inventory.Record{}, false, fmt.Errorf("decode sku %s: %w", sku, err)
	}
	return rec, true, nil
}

func (s *RedisStore) storeErr(op string, err error) error {
	s.logger.Error("❌ Redis request failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", inventory.ErrStoreUnavailable, op, err)
}
