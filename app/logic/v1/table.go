package v1

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/core/srv"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/multiselect"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

type TableLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewTableLogic(ctx context.Context, core *core.Core) *TableLogic {
	return &TableLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type CreateTableArgs struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	TableType   types.TableType       `json:"table_type"`
	ForSale     bool                  `json:"for_sale"`
	Visibility  types.TableVisibility `json:"visibility"`
	Columns     []CreateColumnArgs    `json:"columns"`
}

type CreateColumnArgs struct {
	Name            string `json:"name" binding:"required"`
	ColumnType      string `json:"column_type"`
	IsRequired      bool   `json:"is_required"`
	AllowDuplicates *bool  `json:"allow_duplicates"`
	DefaultValue    string `json:"default_value"`
}

// CreateTable 创建用户表及初始列。sale/rent 表会补齐缺失的受保护列
func (l *TableLogic) CreateTable(args CreateTableArgs) (*types.UserTable, error) {
	if l.GetUserInfo().User == "" {
		return nil, errors.New("TableLogic.CreateTable.check", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	if args.TableType == "" {
		args.TableType = types.TableTypeDefault
	}
	if !args.TableType.Valid() {
		return nil, errors.New("TableLogic.CreateTable.tableType", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if args.Visibility == "" {
		args.Visibility = types.TableVisibilityPrivate
	}
	if !args.Visibility.Valid() {
		return nil, errors.New("TableLogic.CreateTable.visibility", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	table := types.UserTable{
		ID:          utils.GenUniqIDStr(),
		Name:        strings.TrimSpace(args.Name),
		Description: args.Description,
		TableType:   args.TableType,
		ForSale:     args.ForSale || args.TableType == types.TableTypeSale,
		Visibility:  args.Visibility,
		CreatedBy:   l.GetUserInfo().User,
		CreatedAt:   time.Now().Unix(),
		UpdatedAt:   time.Now().Unix(),
	}

	columns, err := l.buildInitialColumns(table, args.Columns)
	if err != nil {
		return nil, err
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().UserTableStore().Create(ctx, table); err != nil {
			return errors.New("TableLogic.CreateTable.UserTableStore.Create", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().TableColumnStore().BatchCreate(ctx, columns); err != nil {
			return errors.New("TableLogic.CreateTable.TableColumnStore.BatchCreate", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// buildInitialColumns 校验初始列并为 sale/rent 表补齐受保护列
func (l *TableLogic) buildInitialColumns(table types.UserTable, args []CreateColumnArgs) ([]types.TableColumn, error) {
	var (
		columns []types.TableColumn
		seen    = map[string]bool{}
		errs    []string
	)

	for _, arg := range args {
		name := strings.TrimSpace(arg.Name)
		if !utils.IsValidColumnName(name) {
			errs = append(errs, "invalid column name \""+name+"\"")
			continue
		}
		if seen[strings.ToLower(name)] {
			errs = append(errs, "duplicate column name \""+name+"\"")
			continue
		}
		seen[strings.ToLower(name)] = true

		columnType := types.ColumnTypeText
		if arg.ColumnType != "" {
			parsed, ok := types.ParseColumnType(arg.ColumnType)
			if !ok {
				errs = append(errs, "unknown column type \""+arg.ColumnType+"\" for column \""+name+"\"")
				continue
			}
			columnType = parsed
		}

		allowDuplicates := true
		if arg.AllowDuplicates != nil {
			allowDuplicates = *arg.AllowDuplicates
		}

		columns = append(columns, types.TableColumn{
			ID:              utils.GenUniqIDStr(),
			TableID:         table.ID,
			Name:            name,
			ColumnType:      columnType,
			IsRequired:      arg.IsRequired,
			AllowDuplicates: allowDuplicates,
			DefaultValue:    arg.DefaultValue,
			Position:        len(columns),
		})
	}

	if len(errs) > 0 {
		return nil, errors.New("TableLogic.buildInitialColumns", i18n.ERROR_VALIDATION, nil).
			Code(http.StatusBadRequest).WithFields(errs)
	}

	// 系统逻辑依赖受保护列存在，缺失时补齐
	for _, p := range protectedColumnDefs(table) {
		if seen[p.Name] {
			continue
		}
		p.ID = utils.GenUniqIDStr()
		p.TableID = table.ID
		p.Position = len(columns)
		columns = append(columns, p)
	}

	return columns, nil
}

func protectedColumnDefs(table types.UserTable) []types.TableColumn {
	switch {
	case table.TableType == types.TableTypeSale || table.ForSale:
		return []types.TableColumn{
			{Name: "price", ColumnType: types.ColumnTypeCurrency, IsRequired: true, AllowDuplicates: true},
			{Name: "qty", ColumnType: types.ColumnTypeInteger, IsRequired: true, AllowDuplicates: true, DefaultValue: "0"},
		}
	case table.TableType == types.TableTypeRent:
		return []types.TableColumn{
			{Name: "price", ColumnType: types.ColumnTypeCurrency, IsRequired: true, AllowDuplicates: true},
			{Name: "used", ColumnType: types.ColumnTypeBoolean, AllowDuplicates: true, DefaultValue: "false"},
		}
	}
	return nil
}

// GetTable 获取表及其列定义，无权限按不存在处理
func (l *TableLogic) GetTable(tableID string) (*types.UserTable, []types.TableColumn, error) {
	table, err := l.loadAccessibleTable(tableID, srv.PermissionView)
	if err != nil {
		return nil, nil, err
	}

	columns, err := l.core.Store().TableColumnStore().ListByTable(l.ctx, tableID)
	if err != nil {
		return nil, nil, errors.New("TableLogic.GetTable.TableColumnStore.ListByTable", i18n.ERROR_INTERNAL, err)
	}
	return table, columns, nil
}

// ListTables 列出当前用户的表
func (l *TableLogic) ListTables(keywords string, page, pageSize uint64) ([]types.UserTable, error) {
	page, pageSize = types.NormalizePagination(page, pageSize)
	list, err := l.core.Store().UserTableStore().List(l.ctx, types.ListUserTableOptions{
		CreatedBy: l.GetUserInfo().User,
		Keywords:  keywords,
	}, page, pageSize)
	if err != nil {
		return nil, errors.New("TableLogic.ListTables.UserTableStore.List", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

type UpdateTableArgs struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Visibility  types.TableVisibility `json:"visibility"`
}

// UpdateTable 更新表名/描述/可见性，表类型创建后不可变
func (l *TableLogic) UpdateTable(tableID string, args UpdateTableArgs) error {
	table, err := l.loadAccessibleTable(tableID, srv.PermissionEdit)
	if err != nil {
		return err
	}

	if args.Visibility == "" {
		args.Visibility = table.Visibility
	}
	if !args.Visibility.Valid() {
		return errors.New("TableLogic.UpdateTable.visibility", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if err = l.core.Store().UserTableStore().Update(l.ctx, tableID, strings.TrimSpace(args.Name), args.Description, args.Visibility); err != nil {
		return errors.New("TableLogic.UpdateTable.UserTableStore.Update", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// DeleteTable 删除表及其列、行与库存流水
func (l *TableLogic) DeleteTable(tableID string) error {
	if _, err := l.loadAccessibleTable(tableID, srv.PermissionAdmin); err != nil {
		return err
	}

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().TableRowStore().DeleteAllByTable(ctx, tableID); err != nil {
			return errors.New("TableLogic.DeleteTable.TableRowStore.DeleteAllByTable", i18n.ERROR_INTERNAL, err)
		}

		columns, err := l.core.Store().TableColumnStore().ListByTable(ctx, tableID)
		if err != nil {
			return errors.New("TableLogic.DeleteTable.TableColumnStore.ListByTable", i18n.ERROR_INTERNAL, err)
		}
		for _, col := range columns {
			if err := l.core.Store().TableColumnStore().Delete(ctx, tableID, col.ID); err != nil {
				return errors.New("TableLogic.DeleteTable.TableColumnStore.Delete", i18n.ERROR_INTERNAL, err)
			}
		}

		if _, err := l.core.Store().InventoryTransactionStore().DeleteByTable(ctx, tableID); err != nil {
			return errors.New("TableLogic.DeleteTable.InventoryTransactionStore.DeleteByTable", i18n.ERROR_INTERNAL, err)
		}

		if err := l.core.Store().UserTableStore().Delete(ctx, tableID); err != nil {
			return errors.New("TableLogic.DeleteTable.UserTableStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	return err
}

// loadAccessibleTable 读取表并做归属校验，无权限统一返回 not found，
// 避免暴露表是否存在
func (l *TableLogic) loadAccessibleTable(tableID string, permission string) (*types.UserTable, error) {
	table, err := l.core.Store().UserTableStore().Get(l.ctx, tableID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("TableLogic.loadAccessibleTable.UserTableStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || table == nil {
		return nil, errors.New("TableLogic.loadAccessibleTable.notfound", i18n.ERROR_TABLE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	if err := l.Identification(l.lazyRolerFromTableID(tableID), permission); err != nil {
		return nil, errors.New("TableLogic.loadAccessibleTable.Identification", i18n.ERROR_TABLE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return table, nil
}

// AddColumn 为既有表追加列，排在末尾
func (l *TableLogic) AddColumn(tableID string, args CreateColumnArgs) (*types.TableColumn, error) {
	table, err := l.loadAccessibleTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(args.Name)
	if !utils.IsValidColumnName(name) {
		return nil, errors.New("TableLogic.AddColumn.name", i18n.ERROR_COLUMN_NAME_FORMAT, nil).Code(http.StatusBadRequest)
	}

	columns, err := l.core.Store().TableColumnStore().ListByTable(l.ctx, tableID)
	if err != nil {
		return nil, errors.New("TableLogic.AddColumn.TableColumnStore.ListByTable", i18n.ERROR_INTERNAL, err)
	}
	if lo.ContainsBy(columns, func(c types.TableColumn) bool {
		return strings.EqualFold(c.Name, name)
	}) {
		return nil, errors.New("TableLogic.AddColumn.nameTaken", i18n.ERROR_COLUMN_NAME_TAKEN, nil).Code(http.StatusConflict)
	}

	columnType := types.ColumnTypeText
	if args.ColumnType != "" {
		parsed, ok := types.ParseColumnType(args.ColumnType)
		if !ok {
			return nil, errors.New("TableLogic.AddColumn.columnType", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
		}
		columnType = parsed
	}

	allowDuplicates := true
	if args.AllowDuplicates != nil {
		allowDuplicates = *args.AllowDuplicates
	}

	column := types.TableColumn{
		ID:              utils.GenUniqIDStr(),
		TableID:         table.ID,
		Name:            name,
		ColumnType:      columnType,
		IsRequired:      args.IsRequired,
		AllowDuplicates: allowDuplicates,
		DefaultValue:    args.DefaultValue,
		Position:        len(columns),
	}
	if err = l.core.Store().TableColumnStore().Create(l.ctx, column); err != nil {
		return nil, errors.New("TableLogic.AddColumn.TableColumnStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &column, nil
}

// UpdateColumn 更新列属性。受保护列拒绝改名与必填/去重标记修改
func (l *TableLogic) UpdateColumn(tableID, columnID string, args types.UpdateTableColumnArgs) error {
	table, err := l.loadAccessibleTable(tableID, srv.PermissionEdit)
	if err != nil {
		return err
	}

	column, err := l.core.Store().TableColumnStore().Get(l.ctx, tableID, columnID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("TableLogic.UpdateColumn.TableColumnStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || column == nil {
		return errors.New("TableLogic.UpdateColumn.notfound", i18n.ERROR_COLUMN_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	if table.IsProtectedColumn(column.Name) {
		if args.Name != nil || args.IsRequired != nil || args.AllowDuplicates != nil {
			return errors.New("TableLogic.UpdateColumn.protected", i18n.ERROR_COLUMN_PROTECTED, nil).Code(http.StatusForbidden)
		}
	}

	if args.Name != nil {
		name := strings.TrimSpace(*args.Name)
		if !utils.IsValidColumnName(name) {
			return errors.New("TableLogic.UpdateColumn.name", i18n.ERROR_COLUMN_NAME_FORMAT, nil).Code(http.StatusBadRequest)
		}
		if !strings.EqualFold(column.Name, name) {
			columns, err := l.core.Store().TableColumnStore().ListByTable(l.ctx, tableID)
			if err != nil {
				return errors.New("TableLogic.UpdateColumn.TableColumnStore.ListByTable", i18n.ERROR_INTERNAL, err)
			}
			if lo.ContainsBy(columns, func(c types.TableColumn) bool {
				return c.ID != columnID && strings.EqualFold(c.Name, name)
			}) {
				return errors.New("TableLogic.UpdateColumn.nameTaken", i18n.ERROR_COLUMN_NAME_TAKEN, nil).Code(http.StatusConflict)
			}
		}
		args.Name = &name
	}

	if args.Name == nil || *args.Name == column.Name {
		if err = l.core.Store().TableColumnStore().Update(l.ctx, tableID, columnID, args); err != nil {
			return errors.New("TableLogic.UpdateColumn.TableColumnStore.Update", i18n.ERROR_INTERNAL, err)
		}
		return nil
	}

	// 改名时同步迁移行文档键，避免旧键下的值失联
	return l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().TableColumnStore().Update(ctx, tableID, columnID, args); err != nil {
			return errors.New("TableLogic.UpdateColumn.TableColumnStore.Update", i18n.ERROR_INTERNAL, err)
		}
		if err := l.core.Store().TableRowStore().RenameDataKey(ctx, tableID, column.Name, *args.Name); err != nil {
			return errors.New("TableLogic.UpdateColumn.TableRowStore.RenameDataKey", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
}

// DeleteColumn 删除列。受保护列不可删除
func (l *TableLogic) DeleteColumn(tableID, columnID string) error {
	table, err := l.loadAccessibleTable(tableID, srv.PermissionEdit)
	if err != nil {
		return err
	}

	column, err := l.core.Store().TableColumnStore().Get(l.ctx, tableID, columnID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("TableLogic.DeleteColumn.TableColumnStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || column == nil {
		return errors.New("TableLogic.DeleteColumn.notfound", i18n.ERROR_COLUMN_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	if table.IsProtectedColumn(column.Name) {
		return errors.New("TableLogic.DeleteColumn.protected", i18n.ERROR_COLUMN_PROTECTED, nil).Code(http.StatusForbidden)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().TableColumnStore().Delete(ctx, tableID, columnID); err != nil {
			return errors.New("TableLogic.DeleteColumn.TableColumnStore.Delete", i18n.ERROR_INTERNAL, err)
		}
		// 删除后压缩 position，保持连续
		if err := l.core.Store().TableColumnStore().ResequencePositions(ctx, tableID); err != nil {
			return errors.New("TableLogic.DeleteColumn.TableColumnStore.ResequencePositions", i18n.ERROR_INTERNAL, err)
		}
		return nil
	})
	return err
}

// GetColumnOptions 模块列类型的可选项，Raw 里带 business 标记的
// 选项会展开出 personal/business 两个变体。非模块列或模块未注册
// 时返回空列表，前端按自由文本输入降级
func (l *TableLogic) GetColumnOptions(tableID, columnID string) ([]multiselect.VariantOption, error) {
	if _, err := l.loadAccessibleTable(tableID, srv.PermissionView); err != nil {
		return nil, err
	}

	column, err := l.core.Store().TableColumnStore().Get(l.ctx, tableID, columnID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("TableLogic.GetColumnOptions.TableColumnStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || column == nil {
		return nil, errors.New("TableLogic.GetColumnOptions.notfound", i18n.ERROR_COLUMN_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	moduleType, ok := column.ColumnType.ModuleType()
	if !ok {
		return []multiselect.VariantOption{}, nil
	}
	options, ok := l.core.Modules().Options(l.ctx, moduleType)
	if !ok {
		return []multiselect.VariantOption{}, nil
	}

	expanded := multiselect.ExpandOptions(options)
	if expanded == nil {
		expanded = []multiselect.VariantOption{}
	}
	return expanded, nil
}

// SwapColumns 交换两列展示位置
func (l *TableLogic) SwapColumns(tableID, columnA, columnB string) error {
	if _, err := l.loadAccessibleTable(tableID, srv.PermissionEdit); err != nil {
		return err
	}
	if columnA == columnB {
		return nil
	}

	for _, id := range []string{columnA, columnB} {
		column, err := l.core.Store().TableColumnStore().Get(l.ctx, tableID, id)
		if err != nil && err != sql.ErrNoRows {
			return errors.New("TableLogic.SwapColumns.TableColumnStore.Get", i18n.ERROR_INTERNAL, err)
		}
		if err == sql.ErrNoRows || column == nil {
			return errors.New("TableLogic.SwapColumns.notfound", i18n.ERROR_COLUMN_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
	}

	if err := l.core.Store().TableColumnStore().SwapPositions(l.ctx, tableID, columnA, columnB); err != nil {
		return errors.New("TableLogic.SwapColumns.TableColumnStore.SwapPositions", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
