// Shared helpers for coursedb CLI commands.
package main

import (
	"fmt"
	"time"

	"github.com/openedu-labs/coursedb/pkg/coursedb"
	"github.com/openedu-labs/coursedb/pkg/types"
)

// openService resolves the data directory and lock timeout and opens the
// coursedb Service. The caller must defer svc.Close().
func openService() (*coursedb.Service, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	var lockTimeout time.Duration
	if configLockTimeout != "" {
		lockTimeout, err = time.ParseDuration(configLockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse lock_timeout %q: %w", configLockTimeout, err)
		}
	}

	svc, err := coursedb.Open(types.Config{
		DataDir:     dataDir,
		LockTimeout: lockTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open coursedb: %w", err)
	}
	return svc, nil
}
