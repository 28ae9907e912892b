// Package sqlite implements the canvass store on an embedded SQLite file.
//
// A Store owns one database file, a single-connection pool, and a writer
// slot that serializes exclusive transactions. Opening a store creates any
// missing tables and runs the column-driven migrations before any
// repository is handed out.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/canvass/internal/codec"
	"github.com/mesh-intelligence/canvass/internal/logging"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// DBFileName is the database file created in the data directory.
const DBFileName = "canvass.db"

// openPaths tracks database files open in this process. A second Store on
// the same file would bypass the first one's writer slot.
var openPaths = struct {
	sync.Mutex
	m map[string]bool
}{m: make(map[string]bool)}

// Store is an open canvass database.
type Store struct {
	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	closeErr  error

	cfg  types.Config
	path string
	db   *sql.DB
	tx   *TxManager
	log  logging.Logger
	now  func() time.Time
	ids  *snowflake.Node

	customers    *CustomerRepository
	prospects    *Repository[types.Prospect]
	appointments *Repository[types.Appointment]
	knocks       *Repository[types.Knock]
	notes        *Repository[types.Note]
	trips        *Repository[types.Trip]
	objections   *Repository[types.Objection]
	directory    *Directory
	tables       map[string]types.Table
}

var _ types.Store = (*Store)(nil)

// Option customizes a Store at Open.
type Option func(*Store)

// WithLogger sets the store's logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the wall clock used for last_modified stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open validates cfg, opens (creating if needed) the database in
// cfg.DataDir, and brings its schema up to date. A failed migration aborts
// the open with a *types.SchemaError.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Store, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{cfg: cfg, log: logging.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNodeIDInvalid, err)
	}
	s.ids = node

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &types.IOError{Op: "create data dir", Err: err}
	}
	path, err := filepath.Abs(filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, &types.IOError{Op: "resolve data dir", Err: err}
	}
	if err := claimPath(path); err != nil {
		return nil, err
	}
	s.path = path

	db, err := sql.Open("sqlite", dsn(path, cfg.TxTimeout))
	if err != nil {
		releasePath(path)
		return nil, &types.IOError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		releasePath(path)
		return nil, &types.IOError{Op: "open", Err: err}
	}
	s.db = db
	s.tx = NewTxManager(db, cfg.TxTimeout, s.log)

	if err := s.ensureSchema(ctx, migrations); err != nil {
		db.Close()
		releasePath(path)
		return nil, err
	}

	s.wire()
	s.log.Info(ctx, "store opened", "path", path)
	return s, nil
}

// dsn enables foreign keys, waits on a locked file for up to busy, and makes
// every BEGIN exclusive.
func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Set("_txlock", "exclusive")
	return path + "?" + q.Encode()
}

func claimPath(path string) error {
	openPaths.Lock()
	defer openPaths.Unlock()
	if openPaths.m[path] {
		return fmt.Errorf("%w: %s", types.ErrAlreadyOpen, path)
	}
	openPaths.m[path] = true
	return nil
}

func releasePath(path string) {
	openPaths.Lock()
	defer openPaths.Unlock()
	delete(openPaths.m, path)
}

func (s *Store) wire() {
	s.customers = newCustomerRepository(s)
	s.prospects = newRepository[types.Prospect](s, codec.ProspectCodec{}, entityOptions{
		orderBy: "last_name COLLATE NOCASE, first_name COLLATE NOCASE, id",
		scrub: codec.Row{
			"first_name": "", "last_name": "", "company": "",
			"phone": "", "email": "", "street": "", "notes": "",
		},
	})
	s.appointments = newRepository[types.Appointment](s, codec.AppointmentCodec{}, entityOptions{
		orderBy: "starts_at, id",
		scrub:   codec.Row{"location": "", "notes": ""},
	})
	s.knocks = newRepository[types.Knock](s, codec.KnockCodec{}, entityOptions{
		orderBy: "knocked_at DESC, id",
		scrub:   codec.Row{"notes": ""},
	})
	s.notes = newRepository[types.Note](s, codec.NoteCodec{}, entityOptions{
		orderBy: "created_at DESC, id",
		scrub:   codec.Row{"text": ""},
	})
	s.trips = newRepository[types.Trip](s, codec.TripCodec{}, entityOptions{
		orderBy: "started_at DESC, id",
		scrub:   codec.Row{"notes": ""},
	})
	s.objections = newRepository[types.Objection](s, codec.ObjectionCodec{}, entityOptions{
		orderBy: "title COLLATE NOCASE, id",
	})
	s.directory = newDirectory(s, s.cfg.IndexDebounce)

	s.tables = map[string]types.Table{
		types.CustomersTable:    tableView[types.Customer]{repo: s.customers.Repository},
		types.ProspectsTable:    tableView[types.Prospect]{repo: s.prospects},
		types.AppointmentsTable: tableView[types.Appointment]{repo: s.appointments},
		types.KnocksTable:       tableView[types.Knock]{repo: s.knocks},
		types.NotesTable:        tableView[types.Note]{repo: s.notes},
		types.TripsTable:        tableView[types.Trip]{repo: s.trips},
		types.ObjectionsTable:   tableView[types.Objection]{repo: s.objections},
	}
}

// Close flushes a pending directory rebuild and closes the database.
// Close is idempotent; afterwards every operation returns ErrStoreClosed.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		ctx := context.Background()
		flushErr := s.directory.flush(ctx)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		dbErr := s.db.Close()
		releasePath(s.path)
		switch {
		case flushErr != nil:
			s.closeErr = fmt.Errorf("flushing phone directory: %w", flushErr)
		case dbErr != nil:
			s.closeErr = &types.IOError{Op: "close", Err: dbErr}
		}
		s.log.Info(ctx, "store closed", "path", s.path)
	})
	return s.closeErr
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.ErrStoreClosed
	}
	return nil
}

// stamp is the current write time at storage precision.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Store) newID() int64 {
	return s.ids.Generate().Int64()
}

// Path returns the absolute path of the database file.
func (s *Store) Path() string { return s.path }

// Config returns the effective configuration.
func (s *Store) Config() types.Config { return s.cfg }

// Table returns the generic view of an entity table.
func (s *Store) Table(name string) (types.Table, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrTableNotFound, name)
	}
	return t, nil
}

// Begin starts a caller-controlled transaction. Repository calls made with
// the returned context join it.
func (s *Store) Begin(ctx context.Context) (*Tx, context.Context, error) {
	if err := s.checkOpen(); err != nil {
		return nil, ctx, err
	}
	return s.tx.Begin(ctx)
}

// WithTransaction runs fn in one transaction; see TxManager.WithTransaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.tx.WithTransaction(ctx, fn)
}

func (s *Store) Customers() *CustomerRepository               { return s.customers }
func (s *Store) Prospects() *Repository[types.Prospect]       { return s.prospects }
func (s *Store) Appointments() *Repository[types.Appointment] { return s.appointments }
func (s *Store) Knocks() *Repository[types.Knock]             { return s.knocks }
func (s *Store) Notes() *Repository[types.Note]               { return s.notes }
func (s *Store) Trips() *Repository[types.Trip]               { return s.trips }
func (s *Store) Objections() *Repository[types.Objection]     { return s.objections }
func (s *Store) Directory() *Directory                        { return s.directory }
