package types

import (
	"errors"
	"time"
)

// Config holds the parameters for opening a coursedb Service.
type Config struct {
	// DataDir is the directory holding the default database, the course
	// database files, the registry side file, and the structural lock file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// LockTimeout bounds how long a create or delete waits for the
	// structural lock before failing with ErrLockTimeout.
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
}

// DefaultLockTimeout is used when Config.LockTimeout is zero.
const DefaultLockTimeout = 10 * time.Second

// Config validation errors.
var (
	ErrDataDirEmpty       = errors.New("data_dir must not be empty")
	ErrLockTimeoutInvalid = errors.New("lock_timeout must not be negative")
)

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.LockTimeout < 0 {
		return ErrLockTimeoutInvalid
	}
	return nil
}

// EffectiveLockTimeout returns LockTimeout or the default when unset.
func (c Config) EffectiveLockTimeout() time.Duration {
	if c.LockTimeout == 0 {
		return DefaultLockTimeout
	}
	return c.LockTimeout
}
