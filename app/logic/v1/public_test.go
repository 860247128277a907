package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridbase/gridbase/pkg/types"
)

func TestFlattenRecord(t *testing.T) {
	row := types.TableRow{
		ID:        "row-1",
		TableID:   "tbl-1",
		CreatedAt: 100,
		UpdatedAt: 200,
		Data: types.RowData{
			"name": "Widget",
			"qty":  float64(3),
		},
	}

	flat := flattenRecord(row)
	assert.Equal(t, "row-1", flat["id"])
	assert.Equal(t, "tbl-1", flat["table_id"])
	assert.Equal(t, int64(100), flat["created_at"])
	assert.Equal(t, int64(200), flat["updated_at"])
	assert.Equal(t, "Widget", flat["name"])
	assert.Equal(t, float64(3), flat["qty"])
}

// 系统字段覆盖同名数据字段，避免数据伪造行ID
func TestFlattenRecordSystemFieldsWin(t *testing.T) {
	row := types.TableRow{
		ID:      "row-1",
		TableID: "tbl-1",
		Data: types.RowData{
			"id": "spoofed",
		},
	}

	flat := flattenRecord(row)
	assert.Equal(t, "row-1", flat["id"])
}
