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
		provider.stores.TableColumnStore = NewTableColumnStore(provider)
	})
}

// TableColumnStore 处理列定义的操作
type TableColumnStore struct {
	CommonFields
}

func NewTableColumnStore(provider SqlProviderAchieve) *TableColumnStore {
	store := &TableColumnStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_TABLE_COLUMN)
	store.SetAllColumns("id", "table_id", "name", "column_type", "is_required", "allow_duplicates", "default_value", "position", "created_at", "updated_at")
	return store
}

// Create 创建列定义
func (s *TableColumnStore) Create(ctx context.Context, data types.TableColumn) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "table_id", "name", "column_type", "is_required", "allow_duplicates", "default_value", "position", "created_at", "updated_at").
		Values(data.ID, data.TableID, data.Name, data.ColumnType, data.IsRequired, data.AllowDuplicates, data.DefaultValue, data.Position, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// BatchCreate 批量创建列定义，建表时写入初始列
func (s *TableColumnStore) BatchCreate(ctx context.Context, datas []types.TableColumn) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "table_id", "name", "column_type", "is_required", "allow_duplicates", "default_value", "position", "created_at", "updated_at")
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		if data.UpdatedAt == 0 {
			data.UpdatedAt = time.Now().Unix()
		}
		query = query.Values(data.ID, data.TableID, data.Name, data.ColumnType, data.IsRequired, data.AllowDuplicates, data.DefaultValue, data.Position, data.CreatedAt, data.UpdatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 获取指定表下的列定义
func (s *TableColumnStore) Get(ctx context.Context, tableID, id string) (*types.TableColumn, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.TableColumn
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// Update 更新列的可编辑属性，只落盘非 nil 的字段
func (s *TableColumnStore) Update(ctx context.Context, tableID, id string, args types.UpdateTableColumnArgs) error {
	query := sq.Update(s.GetTable()).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"table_id": tableID, "id": id})

	if args.Name != nil {
		query = query.Set("name", *args.Name)
	}
	if args.IsRequired != nil {
		query = query.Set("is_required", *args.IsRequired)
	}
	if args.AllowDuplicates != nil {
		query = query.Set("allow_duplicates", *args.AllowDuplicates)
	}
	if args.DefaultValue != nil {
		query = query.Set("default_value", *args.DefaultValue)
	}

	queryString, sqlArgs, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, sqlArgs...)
	return err
}

// Delete 删除列定义
func (s *TableColumnStore) Delete(ctx context.Context, tableID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"table_id": tableID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListByTable 按展示顺序列出表内全部列
func (s *TableColumnStore) ListByTable(ctx context.Context, tableID string) ([]types.TableColumn, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"table_id": tableID}).
		OrderBy("position ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TableColumn
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTables 批量拉取多个表的列定义
func (s *TableColumnStore) ListByTables(ctx context.Context, tableIDs []string) ([]types.TableColumn, error) {
	if len(tableIDs) == 0 {
		return nil, nil
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"table_id": tableIDs}).
		OrderBy("table_id ASC", "position ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TableColumn
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// SwapPositions 以单条 UPDATE 交换两列的 position，避免中间态
func (s *TableColumnStore) SwapPositions(ctx context.Context, tableID, idA, idB string) error {
	queryString := fmt.Sprintf(`
UPDATE %s SET position = CASE id WHEN $1 THEN (SELECT position FROM %s WHERE table_id = $3 AND id = $2)
                                 WHEN $2 THEN (SELECT position FROM %s WHERE table_id = $3 AND id = $1)
                         END,
    updated_at = $4
WHERE table_id = $3 AND id IN ($1, $2)`, s.GetTable(), s.GetTable(), s.GetTable())

	_, err := s.GetMaster(ctx).Exec(queryString, idA, idB, tableID, time.Now().Unix())
	return err
}

// ResequencePositions 按现有顺序把 position 压缩为 0..n-1
func (s *TableColumnStore) ResequencePositions(ctx context.Context, tableID string) error {
	queryString := fmt.Sprintf(`
UPDATE %s t SET position = r.rn
FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY position ASC, id ASC) - 1 AS rn
      FROM %s WHERE table_id = $1) r
WHERE t.table_id = $1 AND t.id = r.id AND t.position <> r.rn`, s.GetTable(), s.GetTable())

	_, err := s.GetMaster(ctx).Exec(queryString, tableID)
	return err
}
