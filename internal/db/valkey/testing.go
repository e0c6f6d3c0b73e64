package valkey

import "github.com/valkey-io/valkey-go"

// NewStoreForTest creates a Store with the provided valkey client (test-only).
func NewStoreForTest(c valkey.Client) *Store {
	return &Store{client: c}
}
