package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestNewSeedsDiffer(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for range 100 {
		if a.IntN(1<<30) == b.IntN(1<<30) {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestNewSecureProducesValuesInRange(t *testing.T) {
	r := NewSecure()
	for range 1000 {
		v := r.IntN(52)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 52)
	}
}
