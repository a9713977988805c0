package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("sup3rsecret")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "sup3rsecret"))
	assert.False(t, CompareHashAndPassword(hash, "sup3rsecreT"))
	assert.False(t, CompareHashAndPassword("", "sup3rsecret"))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
