package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIdaEVolta(t *testing.T) {
	token, err := GerarToken(42, "REVISOR")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "REVISOR", claims.Papel)
}

func TestTokenAdulteradoEhRejeitado(t *testing.T) {
	token, err := GerarToken(42, "REVISOR")
	require.NoError(t, err)

	_, err = ParseAndValidate(token + "x")
	assert.Error(t, err)
}
