package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/kailas-cloud/recommender/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store via valkey-go for Valkey with the valkey-search module.
type Store struct {
	client valkey.Client
}

// NewStore creates a Valkey store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady blocks until Valkey answers PING or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

func (s *Store) do(ctx context.Context, cmd valkey.Completed) valkey.ValkeyResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() valkey.Builder {
	return s.client.B()
}

func isValkeyErr(err error, substr string) bool {
	ve, ok := valkey.IsValkeyErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(ve.Error()), strings.ToLower(substr))
}

func isUnknownIndex(err error) bool {
	return isValkeyErr(err, "unknown index name") ||
		isValkeyErr(err, "no such index") ||
		isValkeyErr(err, "not found")
}
