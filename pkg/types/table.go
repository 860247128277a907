package types

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type TableType string

const (
	TableTypeDefault TableType = "default"
	TableTypeSale    TableType = "sale"
	TableTypeRent    TableType = "rent"
)

func (t TableType) Valid() bool {
	switch t {
	case TableTypeDefault, TableTypeSale, TableTypeRent:
		return true
	}
	return false
}

type TableVisibility string

const (
	TableVisibilityPrivate TableVisibility = "private"
	TableVisibilityPublic  TableVisibility = "public"
	TableVisibilityShared  TableVisibility = "shared"
)

func (v TableVisibility) Valid() bool {
	switch v {
	case TableVisibilityPrivate, TableVisibilityPublic, TableVisibilityShared:
		return true
	}
	return false
}

// UserTable 用户自定义表
type UserTable struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	TableType   TableType       `json:"table_type" db:"table_type"`
	ForSale     bool            `json:"for_sale" db:"for_sale"`
	Visibility  TableVisibility `json:"visibility" db:"visibility"`
	CreatedBy   string          `json:"created_by" db:"created_by"`
	CreatedAt   int64           `json:"created_at" db:"created_at"`
	UpdatedAt   int64           `json:"updated_at" db:"updated_at"`
}

// 受保护列：系统逻辑依赖其存在與语义，不允许常规路径改名、
// 改必填/去重标记。按表类型派生，不落库。
var (
	protectedSaleColumns = map[string]bool{"price": true, "qty": true}
	protectedRentColumns = map[string]bool{"price": true, "used": true}
)

// IsProtectedColumn 判断某列在当前表配置下是否受保护
func (t UserTable) IsProtectedColumn(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case t.TableType == TableTypeSale || t.ForSale:
		return protectedSaleColumns[lower]
	case t.TableType == TableTypeRent:
		return protectedRentColumns[lower]
	}
	return false
}

// TracksInventory 是否需要在行变更后写库存流水
func (t UserTable) TracksInventory() bool {
	return t.ForSale
}

// ListUserTableOptions 表列表查询条件
type ListUserTableOptions struct {
	IDs        []string
	CreatedBy  string
	TableTypes []TableType
	Visibility []TableVisibility
	Keywords   string
}

func (opts ListUserTableOptions) Apply(query *sq.SelectBuilder) {
	if len(opts.IDs) > 0 {
		*query = query.Where(sq.Eq{"id": opts.IDs})
	}
	if opts.CreatedBy != "" {
		*query = query.Where(sq.Eq{"created_by": opts.CreatedBy})
	}
	if len(opts.TableTypes) > 0 {
		*query = query.Where(sq.Eq{"table_type": opts.TableTypes})
	}
	if len(opts.Visibility) > 0 {
		*query = query.Where(sq.Eq{"visibility": opts.Visibility})
	}
	if opts.Keywords != "" {
		*query = query.Where(sq.Like{"name": "%" + opts.Keywords + "%"})
	}
}

// PublicTable 公开只读接口返回的表摘要
type PublicTable struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	TableType   TableType `json:"table_type" db:"table_type"`
	RowCount    int64     `json:"row_count" db:"row_count"`
}
