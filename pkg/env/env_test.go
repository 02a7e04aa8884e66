package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	t.Setenv("LIVEHAUL_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "console")

	assert.Equal(t, "console", First("json", "LIVEHAUL_LOG_FORMAT", "LOG_FORMAT"))
	assert.Equal(t, "json", First("json", "LIVEHAUL_UNSET_FOR_TEST"))

	t.Setenv("LIVEHAUL_LOG_FORMAT", " json ")
	assert.Equal(t, "json", Get("LIVEHAUL_LOG_FORMAT", "console"))
}
