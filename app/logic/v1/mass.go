package v1

import (
	"context"
	"net/http"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/core/srv"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/validator"
)

type MassActionLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewMassActionLogic(ctx context.Context, core *core.Core) *MassActionLogic {
	return &MassActionLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

const (
	MassActionDelete         = "delete"
	MassActionExport         = "export"
	MassActionSetColumnValue = "set_column_value"
)

type MassActionArgs struct {
	Action string   `json:"action" binding:"required"`
	RowIDs []string `json:"row_ids" binding:"required"`

	// set_column_value 参数
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// MassActionResult 批量操作结果。Errors 按行ID给出失败原因，
// 失败的行不会中断其余行的处理
type MassActionResult struct {
	Count  int               `json:"count"`
	Data   []types.TableRow  `json:"data,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Execute 调度批量操作。逐行尽力执行，不做整体回滚
func (l *MassActionLogic) Execute(tableID string, args MassActionArgs) (*MassActionResult, error) {
	switch args.Action {
	case MassActionDelete:
		return l.massDelete(tableID, args.RowIDs)
	case MassActionExport:
		return l.massExport(tableID, args.RowIDs)
	case MassActionSetColumnValue:
		return l.massSetColumnValue(tableID, args.RowIDs, args.Column, args.Value)
	default:
		return nil, errors.New("MassActionLogic.Execute.action", i18n.ERROR_UNKNOWN_ACTION, nil).Code(http.StatusBadRequest)
	}
}

// massDelete 批量删除，返回实际删除行数。在售表逐行补库存流水
func (l *MassActionLogic) massDelete(tableID string, rowIDs []string) (*MassActionResult, error) {
	logic := NewRecordLogic(l.ctx, l.core)
	table, err := logic.loadTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}

	// 删除前取快照，用于库存流水的 previous_data
	rows, err := l.core.Store().TableRowStore().ListByIDs(l.ctx, tableID, rowIDs)
	if err != nil {
		return nil, errors.New("MassActionLogic.massDelete.ListByIDs", i18n.ERROR_INTERNAL, err)
	}

	count, err := l.core.Store().TableRowStore().BatchDelete(l.ctx, tableID, rowIDs)
	if err != nil {
		return nil, errors.New("MassActionLogic.massDelete.BatchDelete", i18n.ERROR_INTERNAL, err)
	}
	l.core.Metrics().RowMutationInc("mass_delete")

	inventory := NewInventoryLogic(l.ctx, l.core)
	for _, row := range rows {
		inventory.TrackItemRemoved(table, row.ID, row.Data, l.GetUserInfo().User)
	}

	return &MassActionResult{Count: int(count)}, nil
}

// massExport 返回所选行的完整快照，不做任何修改
func (l *MassActionLogic) massExport(tableID string, rowIDs []string) (*MassActionResult, error) {
	logic := NewRecordLogic(l.ctx, l.core)
	if _, err := logic.loadTable(tableID, srv.PermissionView); err != nil {
		return nil, err
	}

	rows, err := l.core.Store().TableRowStore().ListByIDs(l.ctx, tableID, rowIDs)
	if err != nil {
		return nil, errors.New("MassActionLogic.massExport.ListByIDs", i18n.ERROR_INTERNAL, err)
	}
	if rows == nil {
		rows = []types.TableRow{}
	}
	return &MassActionResult{Count: len(rows), Data: rows}, nil
}

// massSetColumnValue 对所选行写入同一列值。先对值做一次类型校验，
// 再逐行跑完整校验与查重；失败的行记录原因，通过的行照常提交
func (l *MassActionLogic) massSetColumnValue(tableID string, rowIDs []string, column string, value any) (*MassActionResult, error) {
	logic := NewRecordLogic(l.ctx, l.core)
	table, err := logic.loadTable(tableID, srv.PermissionEdit)
	if err != nil {
		return nil, err
	}
	columns, err := logic.loadColumns(tableID)
	if err != nil {
		return nil, err
	}

	var target *types.TableColumn
	for i := range columns {
		if columns[i].Name == column {
			target = &columns[i]
			break
		}
	}
	if target == nil {
		return nil, errors.New("MassActionLogic.massSetColumnValue.column", i18n.ERROR_COLUMN_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	// 对目标值先做一次类型校验，整批不合法直接拒绝
	coerced, err := validator.CoerceValue(target.ColumnType, value)
	if err != nil {
		return nil, errors.New("MassActionLogic.massSetColumnValue.CoerceValue", i18n.ERROR_VALIDATION, err).
			Code(http.StatusBadRequest).WithFields([]string{err.Error()})
	}

	rows, err := l.core.Store().TableRowStore().ListByIDs(l.ctx, tableID, rowIDs)
	if err != nil {
		return nil, errors.New("MassActionLogic.massSetColumnValue.ListByIDs", i18n.ERROR_INTERNAL, err)
	}

	result := &MassActionResult{Errors: map[string]string{}}
	inventory := NewInventoryLogic(l.ctx, l.core)

	// 按调用方给的顺序逐行处理，不存在的行直接跳过
	for _, row := range orderRowsByIDs(rowIDs, rows) {
		rowID := row.ID

		next := make(types.RowData, len(row.Data)+1)
		for k, v := range row.Data {
			next[k] = v
		}
		next[column] = coerced

		validated, validationErrs := validator.Validate(columns, next)
		if len(validationErrs) > 0 {
			result.Errors[rowID] = validationErrs[0]
			continue
		}
		if err := logic.checkDuplicates(tableID, columns, validated, rowID); err != nil {
			if cerr, ok := err.(*errors.CustomizedError); ok && len(cerr.Fields()) > 0 {
				result.Errors[rowID] = cerr.Fields()[0]
			} else {
				result.Errors[rowID] = "duplicate check failed"
			}
			continue
		}

		if err := l.core.Store().TableRowStore().UpdateData(l.ctx, tableID, rowID, validated); err != nil {
			result.Errors[rowID] = "update failed"
			continue
		}
		result.Count++
		inventory.TrackItemUpdated(table, rowID, row.Data, validated, l.GetUserInfo().User)
	}
	l.core.Metrics().RowMutationInc("mass_set_column_value")

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

// orderRowsByIDs 按调用方给出的ID顺序整理行，库中不存在的ID被丢弃
func orderRowsByIDs(rowIDs []string, rows []types.TableRow) []types.TableRow {
	found := make(map[string]types.TableRow, len(rows))
	for _, row := range rows {
		found[row.ID] = row
	}

	ordered := make([]types.TableRow, 0, len(rows))
	for _, id := range rowIDs {
		if row, ok := found[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered
}
