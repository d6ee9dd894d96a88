package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/goliatone/go-composer/pkg/schema"
)

// Redis persists documents as JSON strings with a set index per kind.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL sets an expiration on stored documents. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis connects a new client.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "composer:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("store: ping redis: %w", err)
	}
	return nil
}

func (r *Redis) key(kind, id string) string {
	return r.prefix + kind + ":" + id
}

func (r *Redis) indexKey(kind string) string {
	return r.prefix + kind + "s"
}

func (r *Redis) Page(ctx context.Context, id string) (schema.Page, error) {
	data, err := r.get(ctx, "page", id)
	if err != nil {
		return schema.Page{}, err
	}
	page, err := schema.ParsePage(data, r.key("page", id))
	if err != nil {
		return schema.Page{}, fmt.Errorf("store: decode page %s: %w", id, err)
	}
	return page, nil
}

func (r *Redis) SavePage(ctx context.Context, page schema.Page) error {
	if err := requireID("page", page.ID); err != nil {
		return err
	}
	data, err := schema.MarshalPage(page)
	if err != nil {
		return fmt.Errorf("store: encode page %s: %w", page.ID, err)
	}
	return r.put(ctx, "page", page.ID, data)
}

func (r *Redis) DeletePage(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key("page", id))
	pipe.SRem(ctx, r.indexKey("page"), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: delete page %s: %w", id, err)
	}
	return nil
}

func (r *Redis) Pages(ctx context.Context) ([]string, error) {
	return r.list(ctx, "page")
}

func (r *Redis) Form(ctx context.Context, id string) (schema.Form, error) {
	data, err := r.get(ctx, "form", id)
	if err != nil {
		return schema.Form{}, err
	}
	form, err := schema.ParseForm(data, r.key("form", id))
	if err != nil {
		return schema.Form{}, fmt.Errorf("store: decode form %s: %w", id, err)
	}
	return form, nil
}

func (r *Redis) SaveForm(ctx context.Context, form schema.Form) error {
	if err := requireID("form", form.ID); err != nil {
		return err
	}
	data, err := schema.MarshalForm(form)
	if err != nil {
		return fmt.Errorf("store: encode form %s: %w", form.ID, err)
	}
	return r.put(ctx, "form", form.ID, data)
}

func (r *Redis) Forms(ctx context.Context) ([]string, error) {
	return r.list(ctx, "form")
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) get(ctx context.Context, kind, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s %s: %w", kind, id, err)
	}
	return data, nil
}

func (r *Redis) put(ctx context.Context, kind, id string, data []byte) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(kind, id), data, r.ttl)
	pipe.SAdd(ctx, r.indexKey(kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: save %s %s: %w", kind, id, err)
	}
	return nil
}

// list drops index members whose document expired.
func (r *Redis) list(ctx context.Context, kind string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list %ss: %w", kind, err)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := r.client.Exists(ctx, r.key(kind, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("store: list %ss: %w", kind, err)
		}
		if exists == 0 {
			r.client.SRem(ctx, r.indexKey(kind), id)
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
