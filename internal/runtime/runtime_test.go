package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshInterval_CapsAtFourHz(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, refreshInterval(100*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, refreshInterval(250*time.Millisecond))
	assert.Equal(t, 5*time.Second, refreshInterval(5*time.Second))
}
