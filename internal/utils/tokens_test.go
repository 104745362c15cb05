package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomName(t *testing.T) {
	name, err := RandomName(15)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{15}$`), name)

	other, err := RandomName(15)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	def, err := RandomName(0)
	require.NoError(t, err)
	assert.Len(t, def, 15)
}
