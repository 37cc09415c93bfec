package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name                 string
		total, page, size    int
		wantPage, wantPages  int
		wantSize, wantOffset int
		wantPrev, wantNext   bool
	}{
		{"empty", 0, 3, 10, 1, 1, 10, 0, false, false},
		{"defaults", 25, 0, 0, 1, 3, 10, 0, false, true},
		{"middle", 25, 2, 10, 2, 3, 10, 10, true, true},
		{"clamped past end", 25, 9, 10, 3, 3, 10, 20, true, false},
		{"size capped", 500, 2, 1000, 2, 5, 100, 100, true, true},
		{"exact multiple", 20, 2, 10, 2, 2, 10, 10, true, false},
		{"negative total", -4, 1, 10, 1, 1, 10, 0, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.total, tc.page, tc.size)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantPages, p.TotalPages)
			assert.Equal(t, tc.wantSize, p.PageSize)
			assert.Equal(t, tc.wantOffset, p.Offset)
			assert.Equal(t, tc.wantPrev, p.HasPrev)
			assert.Equal(t, tc.wantNext, p.HasNext)
			assert.GreaterOrEqual(t, p.Page, 1)
			assert.GreaterOrEqual(t, p.Offset, 0)
		})
	}
}

func TestPage_Window(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, New(100, 1, 10).Window(5))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, New(100, 5, 10).Window(5))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, New(100, 10, 10).Window(5))
	assert.Equal(t, []int{1, 2}, New(15, 2, 10).Window(5))
	assert.Equal(t, []int{1}, New(0, 1, 10).Window(5))
	assert.Empty(t, New(100, 1, 10).Window(0))
}

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string][2]int{
		"/?page=3&pageSize=20": {3, 20},
		"/":                    {1, DefaultPageSize},
		"/?page=-1&pageSize=x": {1, DefaultPageSize},
		"/?pageSize=5000":      {1, MaxPageSize},
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", target, nil)
		page, size := FromQuery(c)
		assert.Equal(t, want[0], page, target)
		assert.Equal(t, want[1], size, target)
	}
}
