package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := Open(path)
	assert.NoError(t, err)
	defer h.Close()

	assert.NoError(t, h.Append(`print 1;`))
	assert.NoError(t, h.Append(`print 2;`))
	assert.NoError(t, h.Append(`print 3;`))

	lines, err := h.Recent(2)
	assert.NoError(t, err)
	assert.Equal(t, []string{`print 2;`, `print 3;`}, lines)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h1, err := Open(path)
	assert.NoError(t, err)
	assert.NoError(t, h1.Append(`print 1;`))
	assert.NoError(t, h1.Close())

	h2, err := Open(path)
	assert.NoError(t, err)
	defer h2.Close()

	lines, err := h2.Recent(10)
	assert.NoError(t, err)
	assert.Equal(t, []string{`print 1;`}, lines)
}
