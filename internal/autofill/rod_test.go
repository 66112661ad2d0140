package autofill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBrowserConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultBrowserConfig()
	assert.True(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 5*time.Second, cfg.FieldTimeout)
}
