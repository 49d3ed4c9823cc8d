package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		wantErr bool
	}{
		{"default is valid", DefaultRetryPolicy(), false},
		{"single attempt", RetryPolicy{MaxAttempts: 1, AttemptTimeout: time.Second}, false},
		{"zero attempts", RetryPolicy{MaxAttempts: 0, AttemptTimeout: time.Second}, true},
		{"negative attempts", RetryPolicy{MaxAttempts: -2, AttemptTimeout: time.Second}, true},
		{"zero timeout", RetryPolicy{MaxAttempts: 1}, true},
		{"negative delay", RetryPolicy{MaxAttempts: 1, AttemptTimeout: time.Second, RetryDelay: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryPolicy_WithRefresh(t *testing.T) {
	p := DefaultRetryPolicy()
	r := p.WithRefresh()
	assert.False(t, p.RefreshOnRetry)
	assert.True(t, r.RefreshOnRetry)
	assert.Equal(t, p.MaxAttempts, r.MaxAttempts)
}
