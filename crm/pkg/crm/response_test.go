package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseLookup(t *testing.T) {
	r := Response{
		"result": map[string]any{
			"item":  map[string]any{"id": float64(4)},
			"empty": nil,
		},
	}

	v, ok := r.Lookup("result", "item", "id")
	assert.True(t, ok)
	assert.Equal(t, float64(4), v)

	_, ok = r.Lookup("result", "empty")
	assert.False(t, ok)

	_, ok = r.Lookup("result", "item", "id", "deeper")
	assert.False(t, ok)

	_, ok = Response(nil).Result()
	assert.False(t, ok)
}

func TestToID(t *testing.T) {
	id, ok := toID(float64(12))
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	id, ok = toID("34")
	assert.True(t, ok)
	assert.Equal(t, int64(34), id)

	_, ok = toID(true)
	assert.False(t, ok)
	_, ok = toID("abc")
	assert.False(t, ok)
}
