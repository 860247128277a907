package v1

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFilterInput(t *testing.T) {
	t.Run("where keys", func(t *testing.T) {
		query, err := url.ParseQuery("where[brand]=Acme&where[price]=12&page=2&sort=name")
		assert.NoError(t, err)

		filters := NormalizeFilterInput(query)
		assert.Equal(t, map[string]string{
			"brand": "Acme",
			"price": "12",
		}, filters)
	})

	t.Run("empty column name dropped", func(t *testing.T) {
		filters := NormalizeFilterInput(map[string][]string{
			"where[]": {"x"},
		})
		assert.Empty(t, filters)
	})

	t.Run("first value wins", func(t *testing.T) {
		filters := NormalizeFilterInput(map[string][]string{
			"where[brand]": {"Acme", "Other"},
		})
		assert.Equal(t, "Acme", filters["brand"])
	})

	t.Run("no filters", func(t *testing.T) {
		filters := NormalizeFilterInput(map[string][]string{"page": {"1"}})
		assert.Empty(t, filters)
	})
}
