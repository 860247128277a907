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
		provider.stores.UserTableStore = NewUserTableStore(provider)
	})
}

// UserTableStore 处理用户表元数据的操作
type UserTableStore struct {
	CommonFields
}

func NewUserTableStore(provider SqlProviderAchieve) *UserTableStore {
	store := &UserTableStore{}
	store.SetProvider(provider)
	store.SetTable(types.TABLE_USER_TABLE)
	store.SetAllColumns("id", "name", "description", "table_type", "for_sale", "visibility", "created_by", "created_at", "updated_at")
	return store
}

// Create 创建表元数据记录
func (s *UserTableStore) Create(ctx context.Context, data types.UserTable) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "name", "description", "table_type", "for_sale", "visibility", "created_by", "created_at", "updated_at").
		Values(data.ID, data.Name, data.Description, data.TableType, data.ForSale, data.Visibility, data.CreatedBy, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 根据ID获取表元数据
func (s *UserTableStore) Get(ctx context.Context, id string) (*types.UserTable, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.UserTable
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// Update 更新表的可编辑属性，table_type 与 for_sale 创建后不可变
func (s *UserTableStore) Update(ctx context.Context, id string, name, description string, visibility types.TableVisibility) error {
	query := sq.Update(s.GetTable()).
		Set("name", name).
		Set("description", description).
		Set("visibility", visibility).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Delete 删除表元数据
func (s *UserTableStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 按条件分页列出表
func (s *UserTableStore) List(ctx context.Context, opts types.ListUserTableOptions, page, pageSize uint64) ([]types.UserTable, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable())
	opts.Apply(&query)

	query = query.OrderBy("created_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.UserTable
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// ListPublic 返回可公开读取的表及其行数。
// tableIDs 为空时返回全部 public/shared 的 sale/rent 表
func (s *UserTableStore) ListPublic(ctx context.Context, tableIDs []string) ([]types.PublicTable, error) {
	rowTable := types.TABLE_TABLE_ROW.Name()
	query := sq.Select(
		"t.id", "t.name", "t.description", "t.table_type",
		"COUNT(r.id) AS row_count",
	).
		From(s.GetTable() + " t").
		LeftJoin(rowTable + " r ON r.table_id = t.id").
		Where(sq.Eq{"t.visibility": []types.TableVisibility{types.TableVisibilityPublic, types.TableVisibilityShared}}).
		Where(sq.Or{
			sq.Eq{"t.table_type": []types.TableType{types.TableTypeSale, types.TableTypeRent}},
			sq.Eq{"t.for_sale": true},
		}).
		GroupBy("t.id", "t.name", "t.description", "t.table_type").
		OrderBy("t.name ASC")

	if len(tableIDs) > 0 {
		query = query.Where(sq.Eq{"t.id": tableIDs})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.PublicTable
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
