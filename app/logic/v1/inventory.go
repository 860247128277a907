package v1

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/core/srv"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/safe"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

type InventoryLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewInventoryLogic(ctx context.Context, core *core.Core) *InventoryLogic {
	return &InventoryLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// quantityOf 从行数据里取数量字段，取不到视为 0
func quantityOf(data map[string]any) float64 {
	v, ok := data["qty"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return 0
}

// track 写入一条流水。库存是旁路记录，失败只打日志，
// 绝不影响主操作的结果
func (l *InventoryLogic) track(tx types.InventoryTransaction) {
	if tx.ID == "" {
		tx.ID = utils.GenUniqIDStr()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}

	go safe.Run(func() {
		// 与请求生命周期解耦，请求返回后落库也要完成
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := l.core.Store().InventoryTransactionStore().Create(ctx, tx); err != nil {
			l.core.Metrics().InventoryFailureInc(string(tx.TransactionType))
			slog.Error("Failed to write inventory transaction",
				slog.String("table_id", tx.TableID),
				slog.String("item_id", tx.ItemID),
				slog.String("type", string(tx.TransactionType)),
				slog.Any("error", err))
		}
	})
}

// TrackItemAdded 新增条目，数量取行数据中的 qty，记为正数
func (l *InventoryLogic) TrackItemAdded(table *types.UserTable, itemID string, data types.RowData, createdBy string) {
	if !table.TracksInventory() {
		return
	}
	qty := quantityOf(data)
	l.track(types.InventoryTransaction{
		TableID:         table.ID,
		TableName:       table.Name,
		ItemID:          itemID,
		TransactionType: types.TransactionAdd,
		QuantityChange:  &qty,
		NewData:         types.Snapshot(data),
		CreatedBy:       createdBy,
	})
}

// TrackItemRemoved 删除条目，数量记为负数
func (l *InventoryLogic) TrackItemRemoved(table *types.UserTable, itemID string, data types.RowData, createdBy string) {
	if !table.TracksInventory() {
		return
	}
	qty := -quantityOf(data)
	l.track(types.InventoryTransaction{
		TableID:         table.ID,
		TableName:       table.Name,
		ItemID:          itemID,
		TransactionType: types.TransactionRemove,
		QuantityChange:  &qty,
		PreviousData:    types.Snapshot(data),
		CreatedBy:       createdBy,
	})
}

// TrackItemUpdated 更新条目，数量记新旧 qty 的差值
func (l *InventoryLogic) TrackItemUpdated(table *types.UserTable, itemID string, previous, next types.RowData, createdBy string) {
	if !table.TracksInventory() {
		return
	}
	delta := quantityOf(next) - quantityOf(previous)
	l.track(types.InventoryTransaction{
		TableID:         table.ID,
		TableName:       table.Name,
		ItemID:          itemID,
		TransactionType: types.TransactionUpdate,
		QuantityChange:  &delta,
		PreviousData:    types.Snapshot(previous),
		NewData:         types.Snapshot(next),
		CreatedBy:       createdBy,
	})
}

// TrackSale 销售出库，quantity 为售出件数，落库为负数
func (l *InventoryLogic) TrackSale(table *types.UserTable, itemID string, quantity float64, referenceID, createdBy string) {
	if !table.TracksInventory() {
		return
	}
	if quantity < 0 {
		quantity = -quantity
	}
	neg := -quantity
	l.track(types.InventoryTransaction{
		TableID:         table.ID,
		TableName:       table.Name,
		ItemID:          itemID,
		TransactionType: types.TransactionSale,
		QuantityChange:  &neg,
		ReferenceID:     referenceID,
		CreatedBy:       createdBy,
	})
}

// TrackAdjustment 人工校正，保留调用方给的符号
func (l *InventoryLogic) TrackAdjustment(table *types.UserTable, itemID string, delta float64, createdBy string) {
	if !table.TracksInventory() {
		return
	}
	l.track(types.InventoryTransaction{
		TableID:         table.ID,
		TableName:       table.Name,
		ItemID:          itemID,
		TransactionType: types.TransactionAdjust,
		QuantityChange:  &delta,
		CreatedBy:       createdBy,
	})
}

// RecordSale 对外登记一笔销售出库
func (l *InventoryLogic) RecordSale(tableID, itemID string, quantity float64, referenceID string) error {
	table, err := l.editableTable(tableID)
	if err != nil {
		return err
	}
	if _, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, itemID); err != nil {
		return errors.New("InventoryLogic.RecordSale.TableRowStore.Get", i18n.ERROR_ROW_NOT_FOUND, err).Code(http.StatusNotFound)
	}
	l.TrackSale(table, itemID, quantity, referenceID, l.GetUserInfo().User)
	return nil
}

// RecordAdjustment 对外登记一笔人工校正
func (l *InventoryLogic) RecordAdjustment(tableID, itemID string, delta float64) error {
	table, err := l.editableTable(tableID)
	if err != nil {
		return err
	}
	if _, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, itemID); err != nil {
		return errors.New("InventoryLogic.RecordAdjustment.TableRowStore.Get", i18n.ERROR_ROW_NOT_FOUND, err).Code(http.StatusNotFound)
	}
	l.TrackAdjustment(table, itemID, delta, l.GetUserInfo().User)
	return nil
}

// foldTransactions 读时聚合，每次调用重算，不做缓存
func foldTransactions(itemID, tableID string, txs []types.InventoryTransaction) types.ItemInventorySummary {
	summary := types.ItemInventorySummary{
		ItemID:  itemID,
		TableID: tableID,
	}
	for _, tx := range txs {
		summary.TransactionCount++
		if tx.QuantityChange == nil {
			continue
		}
		q := *tx.QuantityChange
		summary.CurrentQuantity += q

		switch tx.TransactionType {
		case types.TransactionAdd:
			summary.TotalAdded += q
		case types.TransactionRemove:
			summary.TotalRemoved += -q
		case types.TransactionSale:
			summary.TotalSold += -q
		case types.TransactionAdjust:
			summary.TotalAdjustments += abs(q)
		case types.TransactionUpdate:
			if q > 0 {
				summary.TotalAdded += q
			} else {
				summary.TotalRemoved += -q
			}
		}
	}
	return summary
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// GetItemInventorySummary 单条目读时聚合
func (l *InventoryLogic) GetItemInventorySummary(tableID, itemID string) (*types.ItemInventorySummary, error) {
	if _, err := l.accessibleTable(tableID); err != nil {
		return nil, err
	}

	txs, err := l.core.Store().InventoryTransactionStore().ListByItem(l.ctx, tableID, itemID)
	if err != nil {
		return nil, errors.New("InventoryLogic.GetItemInventorySummary.ListByItem", i18n.ERROR_INTERNAL, err)
	}

	summary := foldTransactions(itemID, tableID, txs)
	return &summary, nil
}

// GetTableInventorySummary 整表读时聚合，含各条目明细
func (l *InventoryLogic) GetTableInventorySummary(tableID string) (*types.TableInventorySummary, error) {
	table, err := l.accessibleTable(tableID)
	if err != nil {
		return nil, err
	}

	txs, err := l.core.Store().InventoryTransactionStore().ListByTable(l.ctx, tableID)
	if err != nil {
		return nil, errors.New("InventoryLogic.GetTableInventorySummary.ListByTable", i18n.ERROR_INTERNAL, err)
	}

	grouped := lo.GroupBy(txs, func(tx types.InventoryTransaction) string {
		return tx.ItemID
	})

	result := &types.TableInventorySummary{
		TableID:   tableID,
		TableName: table.Name,
	}
	for itemID, itemTxs := range grouped {
		item := foldTransactions(itemID, tableID, itemTxs)
		result.Items = append(result.Items, item)
		result.CurrentQuantity += item.CurrentQuantity
		result.TotalAdded += item.TotalAdded
		result.TotalRemoved += item.TotalRemoved
		result.TotalSold += item.TotalSold
		result.TotalAdjustments += item.TotalAdjustments
		result.TransactionCount += item.TransactionCount
	}
	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].ItemID < result.Items[j].ItemID
	})
	return result, nil
}

// ListItemTransactions 条目流水明细
func (l *InventoryLogic) ListItemTransactions(tableID, itemID string) ([]types.InventoryTransaction, error) {
	if _, err := l.accessibleTable(tableID); err != nil {
		return nil, err
	}
	txs, err := l.core.Store().InventoryTransactionStore().ListByItem(l.ctx, tableID, itemID)
	if err != nil {
		return nil, errors.New("InventoryLogic.ListItemTransactions.ListByItem", i18n.ERROR_INTERNAL, err)
	}
	return txs, nil
}

// ClearTableTransactions 清空某表流水，返回清除条数
func (l *InventoryLogic) ClearTableTransactions(tableID string) (int64, error) {
	if _, err := l.accessibleTable(tableID); err != nil {
		return 0, err
	}
	count, err := l.core.Store().InventoryTransactionStore().DeleteByTable(l.ctx, tableID)
	if err != nil {
		return 0, errors.New("InventoryLogic.ClearTableTransactions.DeleteByTable", i18n.ERROR_INTERNAL, err)
	}
	return count, nil
}

// classifyStock 按阈值分级库存量，无告警返回空
func classifyStock(quantity, threshold float64) (types.StockAlertLevel, bool) {
	switch {
	case quantity < 0:
		return types.StockAlertNegative, true
	case quantity == 0:
		return types.StockAlertOut, true
	case quantity <= threshold:
		return types.StockAlertLow, true
	}
	return "", false
}

// CheckStockLevels 库存巡检。tableID 为空时检查当前用户全部
// 的在售表；rent 表排除在外，租借归还后数量归零但物品仍可用
func (l *InventoryLogic) CheckStockLevels(tableID string, threshold float64) (*types.StockCheckResult, error) {
	if threshold <= 0 {
		threshold = l.core.Cfg().Stock.LowThreshold
	}

	var tables []types.UserTable
	if tableID != "" {
		table, err := l.accessibleTable(tableID)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *table)
	} else {
		list, err := l.core.Store().UserTableStore().List(l.ctx, types.ListUserTableOptions{
			CreatedBy: l.GetUserInfo().User,
		}, types.NO_PAGINATION, types.NO_PAGINATION)
		if err != nil {
			return nil, errors.New("InventoryLogic.CheckStockLevels.UserTableStore.List", i18n.ERROR_INTERNAL, err)
		}
		tables = list
	}

	return checkStockForTables(l.ctx, l.core, tables, threshold)
}

// SweepStockLevels 全库巡检，供后台定时任务使用，不做归属过滤
func SweepStockLevels(ctx context.Context, core *core.Core, threshold float64) (*types.StockCheckResult, error) {
	if threshold <= 0 {
		threshold = core.Cfg().Stock.LowThreshold
	}
	tables, err := core.Store().UserTableStore().List(ctx, types.ListUserTableOptions{}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return nil, errors.New("SweepStockLevels.UserTableStore.List", i18n.ERROR_INTERNAL, err)
	}
	return checkStockForTables(ctx, core, tables, threshold)
}

func checkStockForTables(ctx context.Context, core *core.Core, tables []types.UserTable, threshold float64) (*types.StockCheckResult, error) {
	tables = lo.Filter(tables, func(t types.UserTable, _ int) bool {
		return t.TracksInventory() && t.TableType != types.TableTypeRent
	})
	if len(tables) == 0 {
		return &types.StockCheckResult{Alerts: []types.StockAlert{}}, nil
	}

	tableIDs := lo.Map(tables, func(t types.UserTable, _ int) string { return t.ID })
	txs, err := core.Store().InventoryTransactionStore().ListByTables(ctx, tableIDs)
	if err != nil {
		return nil, errors.New("checkStockForTables.ListByTables", i18n.ERROR_INTERNAL, err)
	}

	names := lo.SliceToMap(tables, func(t types.UserTable) (string, string) {
		return t.ID, t.Name
	})

	grouped := lo.GroupBy(txs, func(tx types.InventoryTransaction) string {
		return tx.TableID + "/" + tx.ItemID
	})

	result := &types.StockCheckResult{Alerts: []types.StockAlert{}}
	for _, itemTxs := range grouped {
		result.TotalChecked++
		summary := foldTransactions(itemTxs[0].ItemID, itemTxs[0].TableID, itemTxs)
		level, alerted := classifyStock(summary.CurrentQuantity, threshold)
		if !alerted {
			continue
		}
		switch level {
		case types.StockAlertNegative:
			result.NegativeStockCount++
		case types.StockAlertOut:
			result.OutOfStockCount++
		case types.StockAlertLow:
			result.LowStockCount++
		}
		result.Alerts = append(result.Alerts, types.StockAlert{
			TableID:         itemTxs[0].TableID,
			TableName:       names[itemTxs[0].TableID],
			ItemID:          itemTxs[0].ItemID,
			CurrentQuantity: summary.CurrentQuantity,
			Level:           level,
		})
	}

	// 最紧急的排前面
	sort.Slice(result.Alerts, func(i, j int) bool {
		return result.Alerts[i].CurrentQuantity < result.Alerts[j].CurrentQuantity
	})
	return result, nil
}

func (l *InventoryLogic) accessibleTable(tableID string) (*types.UserTable, error) {
	return l.loadTableWithPermission(tableID, srv.PermissionView)
}

func (l *InventoryLogic) editableTable(tableID string) (*types.UserTable, error) {
	return l.loadTableWithPermission(tableID, srv.PermissionEdit)
}

func (l *InventoryLogic) loadTableWithPermission(tableID, permission string) (*types.UserTable, error) {
	table, err := l.core.Store().UserTableStore().Get(l.ctx, tableID)
	if err != nil {
		return nil, errors.New("InventoryLogic.loadTableWithPermission.UserTableStore.Get", i18n.ERROR_TABLE_NOT_FOUND, err).Code(http.StatusNotFound)
	}
	// 无权限也按不存在处理，避免探测表ID
	if err := l.Identification(l.lazyRolerFromTableID(tableID), permission); err != nil {
		return nil, errors.New("InventoryLogic.loadTableWithPermission.Identification", i18n.ERROR_TABLE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return table, nil
}
