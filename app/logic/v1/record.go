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
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
	"github.com/gridbase/gridbase/pkg/validator"
)

type RecordLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewRecordLogic(ctx context.Context, core *core.Core) *RecordLogic {
	return &RecordLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// loadTable 读取表并校验访问权限，无权限按不存在处理
func (l *RecordLogic) loadTable(tableID string, permission string) (*types.UserTable, error) {
	table, err := l.core.Store().UserTableStore().Get(l.ctx, tableID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("RecordLogic.loadTable.UserTableStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || table == nil {
		return nil, errors.New("RecordLogic.loadTable.notfound", i18n.ERROR_TABLE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	if err := l.Identification(l.lazyRolerFromTableID(tableID), permission); err != nil {
		return nil, errors.New("RecordLogic.loadTable.Identification", i18n.ERROR_TABLE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return table, nil
}

func (l *RecordLogic) loadColumns(tableID string) ([]types.TableColumn, error) {
	columns, err := l.core.Store().TableColumnStore().ListByTable(l.ctx, tableID)
	if err != nil {
		return nil, errors.New("RecordLogic.loadColumns.TableColumnStore.ListByTable", i18n.ERROR_INTERNAL, err)
	}
	return columns, nil
}

// checkDuplicates 去重预检。大小写不敏感比较，更新时排除行自身。
// 该检查与写入之间没有锁，并发写仍可能穿过，属既定取舍
func (l *RecordLogic) checkDuplicates(tableID string, columns []types.TableColumn, data types.RowData, excludeRowID string) error {
	var conflicts []string
	for _, col := range columns {
		if col.AllowDuplicates {
			continue
		}
		value, ok := data[col.Name]
		if !ok || value == nil {
			continue
		}
		exists, err := l.core.Store().TableRowStore().ExistsByColumnValue(l.ctx, tableID, col.Name, value, excludeRowID)
		if err != nil {
			return errors.New("RecordLogic.checkDuplicates.ExistsByColumnValue", i18n.ERROR_INTERNAL, err)
		}
		if exists {
			conflicts = append(conflicts, "duplicate value for column \""+col.Name+"\"")
		}
	}
	if len(conflicts) > 0 {
		return errors.New("RecordLogic.checkDuplicates.conflict", i18n.ERROR_DUPLICATE_VALUE, nil).
			Code(http.StatusConflict).WithFields(conflicts)
	}
	return nil
}

// CreateRecord 校验、查重、落库，在售表追加库存流水
func (l *RecordLogic) CreateRecord(tableID string, raw map[string]any) (*types.TableRow, error) {
	table, err := l.loadTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}
	columns, err := l.loadColumns(tableID)
	if err != nil {
		return nil, err
	}

	validated, validationErrs := validator.Validate(columns, raw)
	if len(validationErrs) > 0 {
		return nil, errors.New("RecordLogic.CreateRecord.Validate", i18n.ERROR_VALIDATION, nil).
			Code(http.StatusBadRequest).WithFields(validationErrs)
	}

	if err = l.checkDuplicates(tableID, columns, validated, ""); err != nil {
		return nil, err
	}

	row := types.TableRow{
		ID:        utils.GenUniqIDStr(),
		TableID:   tableID,
		Data:      validated,
		CreatedBy: l.GetUserInfo().User,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	if err = l.core.Store().TableRowStore().Create(l.ctx, row); err != nil {
		return nil, errors.New("RecordLogic.CreateRecord.TableRowStore.Create", i18n.ERROR_INTERNAL, err)
	}
	l.core.Metrics().RowMutationInc("create")

	NewInventoryLogic(l.ctx, l.core).TrackItemAdded(table, row.ID, row.Data, row.CreatedBy)
	return &row, nil
}

// GetRecord 获取单行
func (l *RecordLogic) GetRecord(tableID, rowID string) (*types.TableRow, error) {
	if _, err := l.loadTable(tableID, srv.PermissionView); err != nil {
		return nil, err
	}

	row, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, rowID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("RecordLogic.GetRecord.TableRowStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || row == nil {
		return nil, errors.New("RecordLogic.GetRecord.notfound", i18n.ERROR_ROW_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return row, nil
}

// UpdateRecord 整体替换行数据。updated_at 由服务端刷新
func (l *RecordLogic) UpdateRecord(tableID, rowID string, raw map[string]any) (*types.TableRow, error) {
	table, err := l.loadTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}
	columns, err := l.loadColumns(tableID)
	if err != nil {
		return nil, err
	}

	previous, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, rowID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("RecordLogic.UpdateRecord.TableRowStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || previous == nil {
		return nil, errors.New("RecordLogic.UpdateRecord.notfound", i18n.ERROR_ROW_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	validated, validationErrs := validator.Validate(columns, raw)
	if len(validationErrs) > 0 {
		return nil, errors.New("RecordLogic.UpdateRecord.Validate", i18n.ERROR_VALIDATION, nil).
			Code(http.StatusBadRequest).WithFields(validationErrs)
	}

	if err = l.checkDuplicates(tableID, columns, validated, rowID); err != nil {
		return nil, err
	}

	if err = l.core.Store().TableRowStore().UpdateData(l.ctx, tableID, rowID, validated); err != nil {
		return nil, errors.New("RecordLogic.UpdateRecord.TableRowStore.UpdateData", i18n.ERROR_INTERNAL, err)
	}
	l.core.Metrics().RowMutationInc("update")

	NewInventoryLogic(l.ctx, l.core).TrackItemUpdated(table, rowID, previous.Data, validated, l.GetUserInfo().User)

	updated := *previous
	updated.Data = validated
	updated.UpdatedAt = time.Now().Unix()
	return &updated, nil
}

// DeleteRecord 删除行并返回删除前的快照
func (l *RecordLogic) DeleteRecord(tableID, rowID string) (*types.TableRow, error) {
	table, err := l.loadTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}

	row, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, rowID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("RecordLogic.DeleteRecord.TableRowStore.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || row == nil {
		return nil, errors.New("RecordLogic.DeleteRecord.notfound", i18n.ERROR_ROW_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	if err = l.core.Store().TableRowStore().Delete(l.ctx, tableID, rowID); err != nil {
		return nil, errors.New("RecordLogic.DeleteRecord.TableRowStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	l.core.Metrics().RowMutationInc("delete")

	NewInventoryLogic(l.ctx, l.core).TrackItemRemoved(table, rowID, row.Data, l.GetUserInfo().User)
	return row, nil
}

type ListRecordsArgs struct {
	Filters map[string]string
	Sort    *types.RowSort
	Page    uint64
	Limit   uint64
}

// ListRecords 过滤/排序/分页列出行，附带分页元信息。
// 过滤列名先经 schema 校验，未知列直接报错而不是带入查询
func (l *RecordLogic) ListRecords(tableID string, args ListRecordsArgs) (*types.RowPage, error) {
	if _, err := l.loadTable(tableID, srv.PermissionView); err != nil {
		return nil, err
	}
	columns, err := l.loadColumns(tableID)
	if err != nil {
		return nil, err
	}

	schemaColumns := lo.SliceToMap(columns, func(c types.TableColumn) (string, bool) {
		return c.Name, true
	})
	var unknown []string
	for col := range args.Filters {
		if !schemaColumns[col] {
			unknown = append(unknown, "unknown filter column \""+col+"\"")
		}
	}
	if len(unknown) > 0 {
		return nil, errors.New("RecordLogic.ListRecords.filters", i18n.ERROR_INVALIDARGUMENT, nil).
			Code(http.StatusBadRequest).WithFields(unknown)
	}

	page, limit := types.NormalizePagination(args.Page, args.Limit)

	orderBy := ""
	if args.Sort != nil {
		orderBy = args.Sort.OrderExpr(schemaColumns)
	}

	opts := types.ListRowOptions{
		TableID: tableID,
		Filters: args.Filters,
	}

	total, err := l.core.Store().TableRowStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("RecordLogic.ListRecords.TableRowStore.Total", i18n.ERROR_INTERNAL, err)
	}

	rows, err := l.core.Store().TableRowStore().List(l.ctx, opts, orderBy, page, limit)
	if err != nil {
		return nil, errors.New("RecordLogic.ListRecords.TableRowStore.List", i18n.ERROR_INTERNAL, err)
	}
	if rows == nil {
		rows = []types.TableRow{}
	}

	result := types.NewRowPage(rows, total, page, limit)
	return &result, nil
}

// normalizeFilterInput 请求参数里 where[col]=v 形式的过滤条件
func NormalizeFilterInput(query map[string][]string) map[string]string {
	filters := make(map[string]string)
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		if strings.HasPrefix(key, "where[") && strings.HasSuffix(key, "]") {
			col := key[len("where[") : len(key)-1]
			if col != "" {
				filters[col] = values[0]
			}
		}
	}
	return filters
}
