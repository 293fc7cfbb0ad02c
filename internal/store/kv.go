package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/redis/go-redis/v9"
)

// sqliteKV implements KV over the kv_entries table.
type sqliteKV struct {
	drv *entsql.Driver
}

func (k *sqliteKV) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(tableKV)).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := k.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %q: %w", key, err)
		}
		return nil, ErrNotFound
	}
	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("scan %q: %w", key, err)
	}
	return value, nil
}

func (k *sqliteKV) Put(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableKV).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := k.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableKV).
		Where(entsql.EQ("key", key)).
		Query()

	if err := k.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// redisKV implements KV over plain redis string keys.
type redisKV struct {
	client *redis.Client
	prefix string
}

func (k *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := k.client.Get(ctx, k.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (k *redisKV) Put(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, k.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (k *redisKV) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, k.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (k *redisKV) key(key string) string {
	return k.prefix + key
}
