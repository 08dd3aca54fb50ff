package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)
	assert.Regexp(t, `^\$2[aby]?\$\d+\$[./A-Za-z0-9]{53}$`, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$13$"), "cost factor must be 13, got %s", hash)
}

func TestCompareHashAndPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "Passw0rd"))
	assert.False(t, CompareHashAndPassword(hash, "Wrong123"))
}
