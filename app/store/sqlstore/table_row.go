package sqlstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/gridbase/gridbase/pkg/register"
	"github.com/gridbase/gridbase/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.TableRowStore = NewTableRowStore(provider)
	})
}

// TableRowStore 处理行数据的操作，data 字段为 JSONB 文档
type TableRowStore struct {
	CommonFields
}

func NewTableRowStore(provider SqlProviderAchieve) *TableRowStore {
	store := &TableRowStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_TABLE_ROW)
	store.SetAllColumns("id", "table_id", "data", "created_by", "created_at", "updated_at")
	return store
}

// Create 创建行记录
func (s *TableRowStore) Create(ctx context.Context, data types.TableRow) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "table_id", "data", "created_by", "created_at", "updated_at").
		Values(data.ID, data.TableID, data.Data, data.CreatedBy, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 获取指定表下的一行
func (s *TableRowStore) Get(ctx context.Context, tableID, id string) (*types.TableRow, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.TableRow
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateData 整体替换行的 JSON 文档并刷新 updated_at
func (s *TableRowStore) UpdateData(ctx context.Context, tableID, id string, data types.RowData) error {
	query := sq.Update(s.GetTable()).
		Set("data", data).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"table_id": tableID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// RenameDataKey 列改名时迁移行文档里的键，旧键删除新键保值。
// 不碰 updated_at，改名不算行内容变化
func (s *TableRowStore) RenameDataKey(ctx context.Context, tableID, oldKey, newKey string) error {
	_, err := s.GetMaster(ctx).Exec(renameDataKeySQL(s.GetTable()), tableID, oldKey, newKey)
	return err
}

func renameDataKeySQL(table string) string {
	return fmt.Sprintf(`
UPDATE %s SET data = (data - $2) || jsonb_build_object($3::text, data->$2)
WHERE table_id = $1 AND jsonb_exists(data, $2)`, table)
}

// Delete 删除一行
func (s *TableRowStore) Delete(ctx context.Context, tableID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 按条件分页列出行。orderBy 须由调用方经白名单生成
func (s *TableRowStore) List(ctx context.Context, opts types.ListRowOptions, orderBy string, page, pageSize uint64) ([]types.TableRow, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable())
	opts.Apply(&query)

	if orderBy == "" {
		orderBy = "updated_at DESC"
	}
	query = query.OrderBy(orderBy)

	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TableRow
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// ListWindow 按原始 limit/offset 取行窗口。offset 不按页对齐，
// 保持调用方传入的起点
func (s *TableRowStore) ListWindow(ctx context.Context, opts types.ListRowOptions, orderBy string, limit, offset uint64) ([]types.TableRow, error) {
	queryString, args, err := buildRowWindowQuery(s.GetTable(), s.GetAllColumns(), opts, orderBy, limit, offset)
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TableRow
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func buildRowWindowQuery(table string, columns []string, opts types.ListRowOptions, orderBy string, limit, offset uint64) (string, []interface{}, error) {
	query := sq.Select(columns...).From(table)
	opts.Apply(&query)

	if orderBy == "" {
		orderBy = "updated_at DESC"
	}
	return query.OrderBy(orderBy).Limit(limit).Offset(offset).ToSql()
}

// Total 统计满足条件的行数
func (s *TableRowStore) Total(ctx context.Context, opts types.ListRowOptions) (uint64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total uint64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// ListByIDs 按ID集合拉取行
func (s *TableRowStore) ListByIDs(ctx context.Context, tableID string, ids []string) ([]types.TableRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TableRow
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// BatchDelete 批量删除，返回实际删除的行数
func (s *TableRowStore) BatchDelete(ctx context.Context, tableID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := sq.Delete(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": ids})

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

// DeleteAllByTable 删除表下全部行，删表时调用
func (s *TableRowStore) DeleteAllByTable(ctx context.Context, tableID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"table_id": tableID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ExistsByColumnValue 去重预检。字符串值大小写不敏感比较，
// excludeRowID 用于更新场景排除行自身
func (s *TableRowStore) ExistsByColumnValue(ctx context.Context, tableID, column string, value any, excludeRowID string) (bool, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"table_id": tableID}).
		Where(sq.Expr("LOWER(data->>?) = LOWER(?)", column, fmt.Sprint(value)))

	if excludeRowID != "" {
		query = query.Where(sq.NotEq{"id": excludeRowID})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return false, ErrorSqlBuild(err)
	}

	var count int
	if err = s.GetReplica(ctx).Get(&count, queryString, args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DistinctValues 返回某列去重后的非空值，跨表聚合，按值升序
func (s *TableRowStore) DistinctValues(ctx context.Context, tableIDs []string, column string, filters map[string]string) ([]string, error) {
	if len(tableIDs) == 0 {
		return nil, nil
	}

	query := sq.Select("DISTINCT data->>? AS value").From(s.GetTable()).
		Where(sq.Expr("data->>? IS NOT NULL AND data->>? <> ''", column, column)).
		OrderBy("value ASC")

	opts := types.ListRowOptions{TableIDs: tableIDs, Filters: filters}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	// DISTINCT 的投影参数需要排在最前
	args = append([]interface{}{column}, args...)

	var res []string
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
