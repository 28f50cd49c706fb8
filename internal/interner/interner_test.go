package interner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternCanonicalizes(t *testing.T) {
	in := New()

	a := in.Intern("hello")
	b := in.Intern("hello")
	assert.Equal(t, a, b, "interning the same bytes twice must return the same id")

	c := in.Intern("world")
	assert.NotEqual(t, a, c)

	assert.Equal(t, "hello", in.Lookup(a))
	assert.Equal(t, "world", in.Lookup(c))
	assert.Equal(t, 2, in.Len())
}

func TestInternIdsAreInsertionOrder(t *testing.T) {
	in := New()
	ids := make([]int, 0, 4)
	for _, s := range []string{"a", "b", "c", "a"} {
		ids = append(ids, in.Intern(s))
	}
	assert.Equal(t, []int{0, 1, 2, 0}, ids)
}

func TestLookupPanicsOutOfRange(t *testing.T) {
	in := New()
	in.Intern("only")
	assert.Panics(t, func() {
		in.Lookup(5)
	})
}
