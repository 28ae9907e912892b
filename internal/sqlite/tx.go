package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mesh-intelligence/canvass/internal/logging"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// TxManager serializes writers. Each transaction holds the single writer
// slot from Begin until Commit or Rollback, and the driver opens it with
// BEGIN EXCLUSIVE. The transaction travels in the context returned by
// Begin; repository calls made with that context join it.
type TxManager struct {
	db      *sql.DB
	slot    chan struct{}
	timeout time.Duration
	log     logging.Logger
}

// NewTxManager wraps db. A non-positive timeout waits for the writer slot
// until the context ends.
func NewTxManager(db *sql.DB, timeout time.Duration, log logging.Logger) *TxManager {
	if log == nil {
		log = logging.Nop()
	}
	return &TxManager{
		db:      db,
		slot:    make(chan struct{}, 1),
		timeout: timeout,
		log:     log,
	}
}

// Tx is one exclusive transaction. Commit and Rollback each release the
// writer slot; whichever runs first wins and the other returns sql.ErrTxDone.
type Tx struct {
	m    *TxManager
	tx   *sql.Tx
	mu   sync.Mutex
	done bool
}

// TxFromContext returns the transaction carried by ctx.
func TxFromContext(ctx context.Context) (*Tx, bool) {
	t, ok := ctx.Value(txKey{}).(*Tx)
	return t, ok
}

// carried returns the transaction in ctx if it belongs to m.
func (m *TxManager) carried(ctx context.Context) *Tx {
	t, ok := TxFromContext(ctx)
	if !ok || t.m != m {
		return nil
	}
	return t
}

// Begin starts an exclusive transaction and returns a context carrying it.
// It fails with ErrNestedTransaction when ctx already carries an open
// transaction of this manager, and with ErrTxTimeout when the writer slot
// stays busy past the timeout.
func (m *TxManager) Begin(ctx context.Context) (*Tx, context.Context, error) {
	if t := m.carried(ctx); t != nil && !t.isDone() {
		return nil, ctx, types.ErrNestedTransaction
	}
	if err := m.acquire(ctx); err != nil {
		return nil, ctx, err
	}
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.release()
		return nil, ctx, fmt.Errorf("beginning transaction: %w", classify("begin", err))
	}
	t := &Tx{m: m, tx: sqlTx}
	return t, context.WithValue(ctx, txKey{}, t), nil
}

func (m *TxManager) acquire(ctx context.Context) error {
	if m.timeout <= 0 {
		select {
		case m.slot <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case m.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %s", types.ErrTxTimeout, m.timeout)
	}
}

func (m *TxManager) release() {
	<-m.slot
}

// WithTransaction runs fn inside a new transaction. It commits when fn
// returns nil and rolls back when fn returns an error or panics.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, txCtx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.log.Error(ctx, "rollback failed", "err", rbErr)
		}
		m.log.Debug(ctx, "transaction rolled back", "err", err)
		return err
	}
	return tx.Commit()
}

// run executes fn in the transaction carried by ctx, or in a fresh one when
// ctx carries none.
func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if t := m.carried(ctx); t != nil {
		if t.isDone() {
			return sql.ErrTxDone
		}
		return fn(ctx)
	}
	return m.WithTransaction(ctx, fn)
}

// read runs fn against the transaction carried by ctx. Without one it first
// claims the writer slot, so a reader waits at most the timeout for the
// connection an open transaction holds and then fails with ErrTxTimeout.
// fn must finish with its rows before returning.
func (m *TxManager) read(ctx context.Context, fn func(q DBTX) error) error {
	if t := m.carried(ctx); t != nil {
		if t.isDone() {
			return sql.ErrTxDone
		}
		return fn(t.tx)
	}
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()
	return fn(m.db)
}

// Querier returns the transaction carried by ctx, or the database.
func (m *TxManager) Querier(ctx context.Context) DBTX {
	if t := m.carried(ctx); t != nil {
		return t.tx
	}
	return m.db
}

// Commit commits the transaction and releases the writer slot.
func (t *Tx) Commit() error {
	if !t.finish() {
		return sql.ErrTxDone
	}
	defer t.m.release()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", classify("commit", err))
	}
	return nil
}

// Rollback discards the transaction and releases the writer slot.
func (t *Tx) Rollback() error {
	if !t.finish() {
		return sql.ErrTxDone
	}
	defer t.m.release()
	return t.tx.Rollback()
}

func (t *Tx) finish() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (t *Tx) isDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
