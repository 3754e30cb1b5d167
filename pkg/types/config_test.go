package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "valid", cfg: Config{DataDir: "/tmp/data"}, wantErr: nil},
		{name: "empty data dir", cfg: Config{}, wantErr: ErrDataDirEmpty},
		{name: "negative timeout", cfg: Config{DataDir: "/tmp/data", LockTimeout: -time.Second}, wantErr: ErrLockTimeoutInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigEffectiveLockTimeout(t *testing.T) {
	assert.Equal(t, DefaultLockTimeout, Config{DataDir: "x"}.EffectiveLockTimeout())
	assert.Equal(t, time.Minute, Config{DataDir: "x", LockTimeout: time.Minute}.EffectiveLockTimeout())
}

func TestSchemaValidate(t *testing.T) {
	assert.NoError(t, Schema{Version: 1, SQL: "CREATE TABLE t (id TEXT);"}.Validate())
	assert.ErrorIs(t, Schema{Version: 1}.Validate(), ErrSchemaEmpty)
	assert.ErrorIs(t, Schema{SQL: "x"}.Validate(), ErrSchemaVersionInvalid)
}

func TestPartialProvisioningError(t *testing.T) {
	cause := errors.New("disk full")
	err := &PartialProvisioningError{Course: "cs101", Path: "/data/courses/cs101.db", Err: cause}

	assert.Contains(t, err.Error(), "cs101")
	assert.Contains(t, err.Error(), "/data/courses/cs101.db")
	assert.ErrorIs(t, err, cause)

	var ppe *PartialProvisioningError
	assert.ErrorAs(t, error(err), &ppe)
}

func TestConnParamsDSN(t *testing.T) {
	dsn, err := ConnParams{Driver: DriverSQLite, Path: "/data/courses/cs101.db"}.DSN()
	assert.NoError(t, err)
	assert.Contains(t, dsn, "file:/data/courses/cs101.db")

	_, err = ConnParams{Driver: DriverSQLite}.DSN()
	assert.Error(t, err)

	_, err = ConnParams{Driver: "postgres"}.DSN()
	assert.Error(t, err)
}

func TestConnParamsEqual(t *testing.T) {
	a := ConnParams{Driver: DriverSQLite, Path: "/data/courses/cs101.db"}
	b := ConnParams{Driver: DriverSQLite, Path: "/data/courses/./cs101.db"}
	c := ConnParams{Driver: DriverSQLite, Path: "/data/courses/other.db"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
