package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/store"
)

var (
	_ store.Persister = (*SessionState)(nil)
	_ api.TokenStore  = (*SessionState)(nil)
	_ logger.Sink     = (*LogSink)(nil)
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "app-storage:abc", StateKey("abc"))
	assert.Equal(t, "auth_token:abc", TokenKey("abc"))
}

func TestNewLogSinkDefaultsSize(t *testing.T) {
	assert.Equal(t, int64(logger.DefaultBufferSize), NewLogSink(nil, 0).max)
	assert.Equal(t, int64(50), NewLogSink(nil, 50).max)
}
