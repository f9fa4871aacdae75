package cli

import "time"

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Fixture            string
	Addr               string
	ABIPath            string
	LogLevel           string
	LogFormat          string
	MaxInstantSwitches int
	Markdown           bool
	NoBanner           bool

	SessionID string
	Resume    string

	Store       StoreOptions
	MetricsAddr string
}

// StoreOptions selects the checkpoint store. Addr selects redis, Dir a
// directory of JSON files. Both empty disables checkpoints.
type StoreOptions struct {
	Dir string

	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	LockTTL  time.Duration

	// EncryptionKey is a hex AES-256 key sealing the account state of checkpoints.
	EncryptionKey string
}

// DefaultMaxInstantSwitches guards the CLI against cyclic instant transitions.
const DefaultMaxInstantSwitches = 128
