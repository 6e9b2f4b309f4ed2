package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/grammar"
	backend "github.com/redis/go-redis/v9"
)

// farFuture scores index members that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.RecordStore and ports.SchemaStore using Redis.
// Records are JSON strings indexed by a sorted set scored by expiry; schemas live in a hash.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for records. Schemas never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "datamodel:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() backend.UniversalClient { return s.client }

func (s *Store) key(ref domain.Ref) string {
	return s.prefix + "record:" + ref.Code()
}

func (s *Store) indexKey() string   { return s.prefix + "index" }
func (s *Store) schemasKey() string { return s.prefix + "schemas" }

// Save persists the document and refreshes its index entry.
func (s *Store) Save(ctx context.Context, doc codec.RecordDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(doc.Ref()), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: doc.Ref().Code()})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a document.
func (s *Store) Load(ctx context.Context, ref domain.Ref) (codec.RecordDocument, error) {
	val, err := s.client.Get(ctx, s.key(ref)).Result()
	if err != nil {
		if err == backend.Nil {
			return codec.RecordDocument{}, domain.ErrRecordNotFound
		}
		return codec.RecordDocument{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc codec.RecordDocument
	if err := codec.Unmarshal([]byte(val), &doc); err != nil {
		return codec.RecordDocument{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return doc, nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, ref domain.Ref) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(ref))
	pipe.ZRem(ctx, s.indexKey(), ref.Code())
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries and returns the rest.
func (s *Store) List(ctx context.Context) ([]domain.Ref, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}

	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	refs := make([]domain.Ref, 0, len(members))
	for _, m := range members {
		ref, err := grammar.ParseCode(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt index member %q: %w", m, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Schemas returns every stored schema.
func (s *Store) Schemas(ctx context.Context) ([]codec.SchemaDocument, error) {
	all, err := s.client.HGetAll(ctx, s.schemasKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}
	out := make([]codec.SchemaDocument, 0, len(all))
	for name, raw := range all {
		var doc codec.SchemaDocument
		if err := codec.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema %s: %w", name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// SaveSchema stores or replaces a schema.
func (s *Store) SaveSchema(ctx context.Context, doc codec.SchemaDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return s.client.HSet(ctx, s.schemasKey(), doc.Name, data).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
