package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query   string
		page    int
		perPage int
		offset  int
	}{
		{"", 1, DefaultPerPage, 0},
		{"?page=3&per_page=10", 3, 10, 20},
		{"?page=0&per_page=0", 1, DefaultPerPage, 0},
		{"?page=-2&per_page=500", 1, DefaultPerPage, 0},
		{"?page=abc&per_page=x", 1, DefaultPerPage, 0},
		{"?page=2&per_page=100", 2, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest("GET", "/api/v1/catalogs"+tt.query, nil))
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
			assert.Equal(t, tt.offset, p.Offset())
			assert.Equal(t, tt.perPage, p.Limit())
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a", "b"}, 5, Params{Page: 1, PerPage: 2})
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)

	last := NewPage([]string{"e"}, 5, Params{Page: 3, PerPage: 2})
	assert.False(t, last.HasNext)
}

func TestNewPage_Empty(t *testing.T) {
	p := NewPage[int](nil, 0, Params{Page: 1, PerPage: 20})
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}
