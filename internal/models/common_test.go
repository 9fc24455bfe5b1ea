package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, PaginationParams{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, page.Data)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	past := Paginate(items, PaginationParams{Page: 9, PageSize: 2})
	assert.NotNil(t, past.Data)
	assert.Empty(t, past.Data)
}

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse("INVALID_TRANSITION", "document is archived", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}
