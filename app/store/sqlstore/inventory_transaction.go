package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/gridbase/gridbase/pkg/register"
	"github.com/gridbase/gridbase/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.InventoryTransactionStore = NewInventoryTransactionStore(provider)
	})
}

// InventoryTransactionStore 只追加的库存流水存储，不提供更新操作
type InventoryTransactionStore struct {
	CommonFields
}

func NewInventoryTransactionStore(provider SqlProviderAchieve) *InventoryTransactionStore {
	store := &InventoryTransactionStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_INVENTORY_TRANSACTION)
	store.SetAllColumns("id", "table_id", "table_name", "item_id", "transaction_type", "quantity_change", "previous_data", "new_data", "reference_id", "created_by", "created_at")
	return store
}

// Create 追加一条流水
func (s *InventoryTransactionStore) Create(ctx context.Context, data types.InventoryTransaction) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "table_id", "table_name", "item_id", "transaction_type", "quantity_change", "previous_data", "new_data", "reference_id", "created_by", "created_at").
		Values(data.ID, data.TableID, data.TableName, data.ItemID, data.TransactionType, data.QuantityChange, data.PreviousData, data.NewData, data.ReferenceID, data.CreatedBy, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListByItem 按条目拉取流水，时间升序，供聚合折叠
func (s *InventoryTransactionStore) ListByItem(ctx context.Context, tableID, itemID string) ([]types.InventoryTransaction, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"table_id": tableID, "item_id": itemID}).
		OrderBy("created_at ASC", "id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.InventoryTransaction
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTable 拉取整表流水，时间升序
func (s *InventoryTransactionStore) ListByTable(ctx context.Context, tableID string) ([]types.InventoryTransaction, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"table_id": tableID}).
		OrderBy("created_at ASC", "id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.InventoryTransaction
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTables 跨表拉取流水，库存巡检使用
func (s *InventoryTransactionStore) ListByTables(ctx context.Context, tableIDs []string) ([]types.InventoryTransaction, error) {
	if len(tableIDs) == 0 {
		return nil, nil
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"table_id": tableIDs}).
		OrderBy("table_id ASC", "created_at ASC", "id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.InventoryTransaction
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteByTable 清空某表的流水，返回删除条数
func (s *InventoryTransactionStore) DeleteByTable(ctx context.Context, tableID string) (int64, error) {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"table_id": tableID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	result, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
