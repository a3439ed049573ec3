package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHead(t *testing.T) {
	head, err := Head()
	require.NoError(t, err)
	assert.Equal(t, int64(1), head)
}
