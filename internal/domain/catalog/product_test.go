package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_Label(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{"title wins", Product{ID: 1, Title: "Mug", VendorCode: "MUG-1"}, "Mug (nmID 1)"},
		{"vendor code fallback", Product{ID: 2, VendorCode: "MUG-2"}, "MUG-2 (nmID 2)"},
		{"placeholder", Product{ID: 3}, "product (nmID 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.product.Label())
		})
	}
}

func TestPhotoFilter_IsValid(t *testing.T) {
	assert.True(t, PhotoFilterAll.IsValid())
	assert.True(t, PhotoFilterWithout.IsValid())
	assert.True(t, PhotoFilterWith.IsValid())
	assert.False(t, PhotoFilter(2).IsValid())
	assert.False(t, PhotoFilter(-2).IsValid())
}

func TestCursor_IsZero(t *testing.T) {
	assert.True(t, Cursor{}.IsZero())
	assert.False(t, Cursor{NmID: 5}.IsZero())
}

func TestDedup(t *testing.T) {
	t.Run("last occurrence wins at first position", func(t *testing.T) {
		in := []Product{
			{ID: 1, Title: "old"},
			{ID: 2, Title: "b"},
			{ID: 1, Title: "new"},
			{ID: 3, Title: "c"},
		}
		out := Dedup(in)
		assert.Equal(t, []Product{
			{ID: 1, Title: "new"},
			{ID: 2, Title: "b"},
			{ID: 3, Title: "c"},
		}, out)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Dedup(nil))
		assert.NotNil(t, Dedup(nil))
	})

	t.Run("no duplicate ids for arbitrary pages", func(t *testing.T) {
		var in []Product
		for i := 0; i < 500; i++ {
			in = append(in, Product{ID: int64(i % 37)})
		}
		out := Dedup(in)
		seen := map[int64]bool{}
		for _, p := range out {
			assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
			seen[p.ID] = true
		}
		assert.Len(t, out, 37)
	})
}
