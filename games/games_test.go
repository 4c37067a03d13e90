package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, name := range Names() {
		game, err := Load(name)
		require.NoError(t, err)
		assert.Equal(t, name, game.Name())
	}

	_, err := Load("go")
	assert.Error(t, err)
}
