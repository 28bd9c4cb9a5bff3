// Package describer contains a main schema describer interface which lets
// you introspect a SQL database into a backend-neutral catalog snapshot.
// It returns a SqlSchema with all tables, columns, indexes and foreign
// keys of one logical schema, or an error if connection/queries were
// unsuccessful.
package describer

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Describer introspects one logical schema over an open connection.
// Catalog queries run sequentially on the connection; a single *sql.DB
// handle must not be shared by two in-flight Describe calls. The schema is
// only returned on full success, never partially.
type Describer interface {
	Describe(ctx context.Context, db *sql.DB, schema string) (*SqlSchema, error)
}

var (
	registry = make(map[string]func() Describer)
	mu       sync.RWMutex
)

// Register installs a describer constructor under a provider name.
func Register(provider string, fn func() Describer) {
	mu.Lock()
	defer mu.Unlock()
	registry[provider] = fn
}

// New returns the describer registered for a provider.
func New(provider string) (Describer, error) {
	mu.RLock()
	fn, ok := registry[provider]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("describer: unsupported provider %q", provider)
	}

	return fn(), nil
}
