package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginate(t *testing.T) {
	testCases := []struct {
		name               string
		total, page, limit int
		expectedLen        int
		expectedTotalPages int
	}{
		{name: "FirstPage", total: 40, page: 1, limit: 12, expectedLen: 12, expectedTotalPages: 4},
		{name: "LastPartialPage", total: 40, page: 4, limit: 12, expectedLen: 4, expectedTotalPages: 4},
		{name: "BeyondLastPage", total: 40, page: 5, limit: 12, expectedLen: 0, expectedTotalPages: 4},
		{name: "ExactMultiple", total: 36, page: 3, limit: 12, expectedLen: 12, expectedTotalPages: 3},
		{name: "Empty", total: 0, page: 1, limit: 12, expectedLen: 0, expectedTotalPages: 0},
		{name: "FarBeyond", total: 5, page: 1000, limit: 100, expectedLen: 0, expectedTotalPages: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			data, totalPages := Paginate(makeItems(testCase.total), testCase.page, testCase.limit)
			assert.Len(data, testCase.expectedLen)
			assert.NotNil(data)
			assert.Equal(testCase.expectedTotalPages, totalPages)
		})
	}
}

func TestPaginateRoundTrip(t *testing.T) {
	for total := 0; total <= 30; total++ {
		for limit := 1; limit <= 8; limit++ {
			items := makeItems(total)
			_, totalPages := Paginate(items, 1, limit)

			var rebuilt []int
			for page := 1; page <= totalPages; page++ {
				data, pages := Paginate(items, page, limit)
				require.Equal(t, totalPages, pages)
				rebuilt = append(rebuilt, data...)
			}
			if total == 0 {
				require.Empty(t, rebuilt)
				continue
			}
			require.Equal(t, items, rebuilt, "total=%d limit=%d", total, limit)
		}
	}
}
