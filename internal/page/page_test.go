package page

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfTotalPage(t *testing.T) {
	cases := []struct {
		total, size, want int64
	}{
		{10, 3, 4},
		{9, 3, 3},
		{0, 3, 0},
		{1, 1, 1},
		{1, 100, 1},
		{101, 10, 11},
	}
	for _, c := range cases {
		r, err := Of[int](1, c.size, c.total, nil)
		require.NoError(t, err)
		assert.Equal(t, c.want, r.TotalPage, "total=%d size=%d", c.total, c.size)
	}
}

func TestOfCeilingProperty(t *testing.T) {
	for total := int64(0); total <= 50; total++ {
		for size := int64(1); size <= 12; size++ {
			r, err := Of[string](0, size, total, nil)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, r.TotalPage*size, total)
			if total > 0 {
				assert.Less(t, (r.TotalPage-1)*size, total)
			}
		}
	}
}

func TestOfRejectsInvalidArguments(t *testing.T) {
	cases := []struct {
		name                 string
		current, size, total int64
		field                string
	}{
		{"negative current", -1, 10, 5, "currentPage"},
		{"zero size", 1, 0, 5, "pageSize"},
		{"zero size with bad total", 0, 0, -3, "pageSize"},
		{"negative size", 1, -2, 5, "pageSize"},
		{"negative total", 1, 10, -1, "total"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := Of(c.current, c.size, c.total, []int{1})
			assert.Nil(t, r)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, c.field, ve.Field)
			assert.Contains(t, err.Error(), c.field)
		})
	}
}

func TestOfKeepsDataAndMarshalsEmptySlice(t *testing.T) {
	r, err := Of(2, 2, 3, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, r.Data)
	assert.Equal(t, int64(2), r.CurrentPage)

	empty, err := Of[string](1, 10, 0, nil)
	require.NoError(t, err)
	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentPage":1,"pageSize":10,"total":0,"totalPage":0,"data":[]}`, string(b))
}
