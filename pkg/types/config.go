package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for opening a store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// NodeID seeds the snowflake ID generator. Devices that may later share
	// data should use distinct node IDs.
	NodeID int64 `json:"node_id" yaml:"node_id"`

	// TxTimeout bounds how long a writer waits for the transaction slot.
	TxTimeout time.Duration `json:"tx_timeout" yaml:"tx_timeout"`

	// IndexDebounce delays scheduled phone directory rebuilds. Zero rebuilds
	// on every Schedule call.
	IndexDebounce time.Duration `json:"index_debounce" yaml:"index_debounce"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by WithDefaults.
const (
	DefaultNodeID        = 1
	DefaultTxTimeout     = 5 * time.Second
	DefaultIndexDebounce = 2 * time.Second

	// MaxNodeID is the largest node ID a 10-bit snowflake node accepts.
	MaxNodeID = 1023
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrNodeIDInvalid        = errors.New("node id must be between 0 and 1023")
	ErrTxTimeoutInvalid     = errors.New("transaction timeout must be positive")
	ErrIndexDebounceInvalid = errors.New("index debounce must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// WithDefaults returns a copy of c with unset tuning values filled in.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.NodeID == 0 {
		c.NodeID = DefaultNodeID
	}
	if c.TxTimeout == 0 {
		c.TxTimeout = DefaultTxTimeout
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.NodeID < 0 || c.NodeID > MaxNodeID {
		return ErrNodeIDInvalid
	}
	if c.TxTimeout <= 0 {
		return ErrTxTimeoutInvalid
	}
	if c.IndexDebounce < 0 {
		return ErrIndexDebounceInvalid
	}
	return nil
}
