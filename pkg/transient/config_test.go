package transient

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults", DefaultStoreConfig(), nil},
		{"exact invariant", Config{TimeOut: 2 * time.Second, LockTimeOut: time.Second}, nil},
		{"zero both", Config{}, nil},
		{"negative timeout", Config{TimeOut: -time.Second}, ErrNegativeTimeout},
		{"negative lock timeout", Config{TimeOut: time.Minute, LockTimeOut: -time.Second}, ErrNegativeTimeout},
		{"invariant violated", Config{TimeOut: time.Second, LockTimeOut: 600 * time.Millisecond}, ErrTimeoutInvariant},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}
