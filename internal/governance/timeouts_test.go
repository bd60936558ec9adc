package governance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeoutAdapterAppliesDefaults(t *testing.T) {
	a := NewTimeoutAdapter(TimeoutConfig{})
	assert.Equal(t, 5*time.Second, a.CallScreeningTimeout())
}

func TestConfigureReplacesTimeout(t *testing.T) {
	a := NewTimeoutAdapter(DefaultTimeoutConfig())

	require.NoError(t, a.Configure(TimeoutConfig{CallScreening: 250 * time.Millisecond}))
	assert.Equal(t, 250*time.Millisecond, a.CallScreeningTimeout())
}

func TestConfigureRejectsNonPositiveTimeout(t *testing.T) {
	a := NewTimeoutAdapter(DefaultTimeoutConfig())

	require.Error(t, a.Configure(TimeoutConfig{CallScreening: 0}))
	assert.Equal(t, 5*time.Second, a.CallScreeningTimeout(), "failed configure must not change the value")
}
