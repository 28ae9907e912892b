// Package canvass opens the local persistence store of the canvass field
// sales CRM.
//
//	store, err := canvass.Open(ctx, types.Config{DataDir: dir})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//	err = store.Customers().Insert(ctx, &types.Customer{FirstName: "Ann"})
package canvass

import (
	"context"
	"time"

	"github.com/mesh-intelligence/canvass/internal/logging"
	"github.com/mesh-intelligence/canvass/internal/sqlite"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Version is the release of this module.
const Version = "0.3.0"

type (
	// Store is an open canvass database.
	Store = sqlite.Store

	// Option customizes a Store at Open.
	Option = sqlite.Option

	// Tx is a caller-controlled exclusive transaction.
	Tx = sqlite.Tx

	// Logger receives the store's structured log events.
	Logger = logging.Logger
)

// Open opens, creating if needed, the store described by cfg and brings its
// schema up to date.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Store, error) {
	return sqlite.Open(ctx, cfg, opts...)
}

// WithLogger sends store events to l.
func WithLogger(l Logger) Option { return sqlite.WithLogger(l) }

// WithClock replaces the clock used to stamp last_modified.
func WithClock(now func() time.Time) Option { return sqlite.WithClock(now) }
