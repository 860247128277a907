package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridbase/gridbase/pkg/types"
)

func TestOrderRowsByIDs(t *testing.T) {
	rows := []types.TableRow{
		{ID: "b", TableID: "t1"},
		{ID: "a", TableID: "t1"},
	}

	t.Run("keeps caller order", func(t *testing.T) {
		ordered := orderRowsByIDs([]string{"a", "b"}, rows)
		assert.Len(t, ordered, 2)
		assert.Equal(t, "a", ordered[0].ID)
		assert.Equal(t, "b", ordered[1].ID)
	})

	t.Run("missing ids dropped silently", func(t *testing.T) {
		// 一个存在一个不存在时只处理存在的行，不产生逐行错误
		ordered := orderRowsByIDs([]string{"a", "ghost"}, rows)
		assert.Len(t, ordered, 1)
		assert.Equal(t, "a", ordered[0].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, orderRowsByIDs(nil, rows))
		assert.Empty(t, orderRowsByIDs([]string{"a"}, nil))
	})
}
