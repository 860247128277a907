package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridbase/gridbase/pkg/types"
)

func TestBuildRowWindowQuery(t *testing.T) {
	columns := []string{"id", "table_id", "data", "created_by", "created_at", "updated_at"}

	t.Run("offset not aligned to page boundary", func(t *testing.T) {
		// offset 5 limit 10 必须原样落到 SQL，不能退回到页边界
		queryString, args, err := buildRowWindowQuery(string(types.TABLE_TABLE_ROW), columns,
			types.ListRowOptions{TableID: "t1"}, "", 10, 5)
		assert.NoError(t, err)
		assert.Contains(t, queryString, "LIMIT 10")
		assert.Contains(t, queryString, "OFFSET 5")
		assert.Equal(t, []interface{}{"t1"}, args)
	})

	t.Run("default order", func(t *testing.T) {
		queryString, _, err := buildRowWindowQuery(string(types.TABLE_TABLE_ROW), columns,
			types.ListRowOptions{TableID: "t1"}, "", 10, 0)
		assert.NoError(t, err)
		assert.Contains(t, queryString, "ORDER BY updated_at DESC")
	})
}

func TestRenameDataKeySQL(t *testing.T) {
	queryString := renameDataKeySQL(string(types.TABLE_TABLE_ROW))
	// 旧键摘除后再以新键并回原值，只动持有旧键的行
	assert.Contains(t, queryString, "data - $2")
	assert.Contains(t, queryString, "jsonb_build_object($3::text, data->$2)")
	assert.Contains(t, queryString, "jsonb_exists(data, $2)")
}
