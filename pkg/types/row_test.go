package types

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRowOptionsApply(t *testing.T) {
	t.Run("文本过滤走大小写不敏感包含匹配", func(t *testing.T) {
		query := sq.Select("id").From("gridbase_table_row")
		opts := ListRowOptions{
			TableID: "tbl-1",
			Filters: map[string]string{"brand": "Acme"},
		}
		opts.Apply(&query)

		sqlStr, args, err := query.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sqlStr, "LOWER(data->>?) LIKE LOWER(?)")
		assert.Equal(t, []interface{}{"tbl-1", "brand", "%Acme%"}, args)
	})

	t.Run("数字过滤生成数值比较分支", func(t *testing.T) {
		query := sq.Select("id").From("gridbase_table_row")
		opts := ListRowOptions{
			TableID: "tbl-1",
			Filters: map[string]string{"qty": "12"},
		}
		opts.Apply(&query)

		sqlStr, args, err := query.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sqlStr, "(data->>?)::numeric = ?")
		// 数值分支带回退的 LIKE 条件
		assert.Contains(t, sqlStr, "ELSE LOWER(data->>?) LIKE LOWER(?)")
		require.Len(t, args, 6)
		assert.Equal(t, "tbl-1", args[0])
		assert.Equal(t, float64(12), args[3])
	})

	t.Run("多个过滤条件按列名排序保证SQL稳定", func(t *testing.T) {
		build := func() string {
			query := sq.Select("id").From("gridbase_table_row")
			opts := ListRowOptions{
				TableID: "tbl-1",
				Filters: map[string]string{"zeta": "x", "alpha": "y", "mid": "z"},
			}
			opts.Apply(&query)
			sqlStr, _, err := query.ToSql()
			require.NoError(t, err)
			return sqlStr
		}

		first := build()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, build())
		}
	})

	t.Run("跨表查询使用 IN 条件", func(t *testing.T) {
		query := sq.Select("id").From("gridbase_table_row")
		opts := ListRowOptions{TableIDs: []string{"a", "b"}}
		opts.Apply(&query)

		sqlStr, args, err := query.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sqlStr, "table_id IN (?,?)")
		assert.Equal(t, []interface{}{"a", "b"}, args)
	})
}

func TestRowSortOrderExpr(t *testing.T) {
	schema := map[string]bool{"name": true, "price": true, "o'clock": true}

	tests := []struct {
		name string
		sort RowSort
		want string
	}{
		{"内置字段", RowSort{Field: "created_at", Direction: SortAsc}, "created_at ASC"},
		{"内置字段降序", RowSort{Field: "id", Direction: SortDesc}, "id DESC"},
		{"schema 列", RowSort{Field: "price", Direction: SortDesc}, "data->>'price' DESC"},
		{"未知字段回退默认排序", RowSort{Field: "evil; DROP TABLE", Direction: SortAsc}, "updated_at DESC"},
		{"列名中的单引号被转义", RowSort{Field: "o'clock", Direction: SortAsc}, "data->>'o''clock' ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sort.OrderExpr(schema))
		})
	}
}

func TestNewRowPage(t *testing.T) {
	t.Run("整除时不多算一页", func(t *testing.T) {
		page := NewRowPage(nil, 40, 2, 20)
		assert.Equal(t, uint64(2), page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.True(t, page.HasPrevPage)
	})

	t.Run("余数进一页", func(t *testing.T) {
		page := NewRowPage(nil, 41, 1, 20)
		assert.Equal(t, uint64(3), page.TotalPages)
		assert.True(t, page.HasNextPage)
		assert.False(t, page.HasPrevPage)
	})

	t.Run("空结果", func(t *testing.T) {
		page := NewRowPage(nil, 0, 1, 20)
		assert.Equal(t, uint64(0), page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.False(t, page.HasPrevPage)
	})
}

func TestNormalizePagination(t *testing.T) {
	page, limit := NormalizePagination(0, 0)
	assert.Equal(t, uint64(1), page)
	assert.Equal(t, uint64(DEFAULT_PAGE_SIZE), limit)

	_, limit = NormalizePagination(1, 500)
	assert.Equal(t, uint64(MAX_PAGE_SIZE), limit)
}
