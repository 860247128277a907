package store

import (
	"context"

	"github.com/gridbase/gridbase/pkg/sqlstore"
	"github.com/gridbase/gridbase/pkg/types"
)

// UserTableStore 用户自定义表的元数据存储
type UserTableStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.UserTable) error
	Get(ctx context.Context, id string) (*types.UserTable, error)
	Update(ctx context.Context, id string, name, description string, visibility types.TableVisibility) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts types.ListUserTableOptions, page, pageSize uint64) ([]types.UserTable, error)
	// ListPublic 返回 sale/rent 且 public/shared 的表及行数
	ListPublic(ctx context.Context, tableIDs []string) ([]types.PublicTable, error)
}

// TableColumnStore 列定义存储，position 约定连续且从 0 开始
type TableColumnStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.TableColumn) error
	BatchCreate(ctx context.Context, datas []types.TableColumn) error
	Get(ctx context.Context, tableID, id string) (*types.TableColumn, error)
	Update(ctx context.Context, tableID, id string, args types.UpdateTableColumnArgs) error
	Delete(ctx context.Context, tableID, id string) error
	ListByTable(ctx context.Context, tableID string) ([]types.TableColumn, error)
	// SwapPositions 交换两列的展示顺序
	SwapPositions(ctx context.Context, tableID, idA, idB string) error
	// ResequencePositions 将列的 position 压缩为从 0 起的连续序列
	ResequencePositions(ctx context.Context, tableID string) error
	ListByTables(ctx context.Context, tableIDs []string) ([]types.TableColumn, error)
}

// TableRowStore 行存储。data 为 JSONB 文档，过滤与排序
// 基于 data->>'col' 表达式构建
type TableRowStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.TableRow) error
	Get(ctx context.Context, tableID, id string) (*types.TableRow, error)
	// UpdateData 原子替换整个 JSON 文档并刷新 updated_at
	UpdateData(ctx context.Context, tableID, id string, data types.RowData) error
	Delete(ctx context.Context, tableID, id string) error
	// RenameDataKey 列改名时把行文档中的旧键迁到新键
	RenameDataKey(ctx context.Context, tableID, oldKey, newKey string) error
	List(ctx context.Context, opts types.ListRowOptions, orderBy string, page, pageSize uint64) ([]types.TableRow, error)
	// ListWindow 按原始 limit/offset 取行，不做分页对齐
	ListWindow(ctx context.Context, opts types.ListRowOptions, orderBy string, limit, offset uint64) ([]types.TableRow, error)
	Total(ctx context.Context, opts types.ListRowOptions) (uint64, error)
	ListByIDs(ctx context.Context, tableID string, ids []string) ([]types.TableRow, error)
	BatchDelete(ctx context.Context, tableID string, ids []string) (int64, error)
	DeleteAllByTable(ctx context.Context, tableID string) error
	// ExistsByColumnValue 去重预检，字符串大小写不敏感，可排除某行
	ExistsByColumnValue(ctx context.Context, tableID, column string, value any, excludeRowID string) (bool, error)
	DistinctValues(ctx context.Context, tableIDs []string, column string, filters map[string]string) ([]string, error)
}

// InventoryTransactionStore 只追加的库存流水存储
type InventoryTransactionStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.InventoryTransaction) error
	ListByItem(ctx context.Context, tableID, itemID string) ([]types.InventoryTransaction, error)
	ListByTable(ctx context.Context, tableID string) ([]types.InventoryTransaction, error)
	ListByTables(ctx context.Context, tableIDs []string) ([]types.InventoryTransaction, error)
	DeleteByTable(ctx context.Context, tableID string) (int64, error)
}

type AccessTokenStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.AccessToken) error
	GetAccessToken(ctx context.Context, appid, token string) (*types.AccessToken, error)
	ListUserTokens(ctx context.Context, appid, userID string, page, pageSize uint64) ([]types.AccessToken, error)
	Delete(ctx context.Context, appid, userID string, ids []string) error
}

type Store interface {
	UserTableStore() UserTableStore
	TableColumnStore() TableColumnStore
	TableRowStore() TableRowStore
	InventoryTransactionStore() InventoryTransactionStore
	AccessTokenStore() AccessTokenStore
	Transaction(ctx context.Context, next func(ctx context.Context) error) error
}
