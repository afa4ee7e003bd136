package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsValues(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
}

func TestWindow(t *testing.T) {
	p := &PaginationParams{Page: 2, PerPage: 10}
	start, end := p.Window(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	p.Page = 3
	start, end = p.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	p.Page = 9
	start, end = p.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	empty := NewPagination(1, 15, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
