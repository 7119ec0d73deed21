package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID("wallet")
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "wallet", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 9)

	assert.NotEqual(t, id, NewID("wallet"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "PLS", NormalizeSymbol(" pls "))
	assert.Equal(t, "", NormalizeSymbol(""))
}
