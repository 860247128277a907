package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// RowData 行数据，列名 -> 值的 JSON 文档，存储为 JSONB
type RowData map[string]any

func (d RowData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *RowData) Scan(value any) error {
	if value == nil {
		*d = RowData{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported row data type %T", value)
	}
	return json.Unmarshal(raw, d)
}

// TableRow 用户表中的一行记录
type TableRow struct {
	ID        string  `json:"id" db:"id"`
	TableID   string  `json:"table_id" db:"table_id"`
	Data      RowData `json:"data" db:"data"`
	CreatedBy string  `json:"created_by" db:"created_by"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// RowSort 单字段排序，field 需为表内列名或内置字段，
// 未识别的字段由调用方回退到 updated_at DESC
type RowSort struct {
	Field     string
	Direction SortDirection
}

// ListRowOptions 行查询条件。Filters 为 AND 连接的单列条件，
// 列名须先经 schema 校验再进入查询构建
type ListRowOptions struct {
	TableID  string
	TableIDs []string
	RowIDs   []string
	Filters  map[string]string
}

// Apply 将查询条件装配到查询构建器上。
// 数字形态的过滤值按数值比较，其余按大小写不敏感包含匹配。
func (opts ListRowOptions) Apply(query *sq.SelectBuilder) {
	if opts.TableID != "" {
		*query = query.Where(sq.Eq{"table_id": opts.TableID})
	} else if len(opts.TableIDs) > 0 {
		*query = query.Where(sq.Eq{"table_id": opts.TableIDs})
	}
	if len(opts.RowIDs) > 0 {
		*query = query.Where(sq.Eq{"id": opts.RowIDs})
	}
	for _, col := range sortedFilterKeys(opts.Filters) {
		val := opts.Filters[col]
		if num, err := strconv.ParseFloat(val, 64); err == nil {
			// 正则里的字面量 ? 需写作 ?? 以免被占位符改写吃掉
			*query = query.Where(sq.Expr(
				"(CASE WHEN data->>? ~ '^-??[0-9]+(\\.[0-9]+)??$' THEN (data->>?)::numeric = ? ELSE LOWER(data->>?) LIKE LOWER(?) END)",
				col, col, num, col, "%"+val+"%",
			))
		} else {
			*query = query.Where(sq.Expr("LOWER(data->>?) LIKE LOWER(?)", col, "%"+val+"%"))
		}
	}
}

// sortedFilterKeys 固定条件装配顺序，保证同一组过滤条件
// 生成稳定的 SQL（缓存键、幂等列表依赖这一点）
func sortedFilterKeys(filters map[string]string) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

// OrderExpr 生成排序表达式。schemaColumns 为当前表的列名集合，
// 未识别的字段回退 updated_at DESC
func (s RowSort) OrderExpr(schemaColumns map[string]bool) string {
	dir := "ASC"
	if s.Direction == SortDesc {
		dir = "DESC"
	}
	switch s.Field {
	case "created_at", "updated_at", "id":
		return s.Field + " " + dir
	}
	if schemaColumns[s.Field] {
		escaped := strings.ReplaceAll(s.Field, "'", "''")
		return fmt.Sprintf("data->>'%s' %s", escaped, dir)
	}
	return "updated_at DESC"
}

// RowPage 分页查询结果
type RowPage struct {
	Data        []TableRow `json:"data"`
	Total       uint64     `json:"total"`
	Page        uint64     `json:"page"`
	Limit       uint64     `json:"limit"`
	TotalPages  uint64     `json:"total_pages"`
	HasNextPage bool       `json:"has_next_page"`
	HasPrevPage bool       `json:"has_prev_page"`
}

// NewRowPage 由总数与分页窗口推导分页元信息
func NewRowPage(data []TableRow, total, page, limit uint64) RowPage {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return RowPage{
		Data:        data,
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && total > 0,
	}
}
