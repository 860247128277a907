package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

// PublicLogic 面向令牌访问方的只读查询面。列表与查询结果走
// TTL 缓存，不做写穿透失效，读方最多看到一个 TTL 的陈旧数据
type PublicLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewPublicLogic(ctx context.Context, core *core.Core) *PublicLogic {
	return &PublicLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// ListPublicTables 令牌可见的公开表，带行数
func (l *PublicLogic) ListPublicTables() ([]types.PublicTable, error) {
	tables, err := l.loadPublicTables()
	if err != nil {
		return nil, err
	}

	access := l.GetUserInfo().TableAccess
	if !access.Unrestricted() {
		tables = lo.Filter(tables, func(t types.PublicTable, _ int) bool {
			return access.Allows(t.ID)
		})
	}
	if tables == nil {
		tables = []types.PublicTable{}
	}
	return tables, nil
}

// loadPublicTables 读公开表全量列表，穿透时回填缓存
func (l *PublicLogic) loadPublicTables() ([]types.PublicTable, error) {
	if raw, err := l.core.Cache().Get(l.ctx, types.CACHE_KEY_PUBLIC_TABLES); err == nil && raw != "" {
		var cached []types.PublicTable
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			l.core.Metrics().QueryCacheInc("hit")
			return cached, nil
		}
	}
	l.core.Metrics().QueryCacheInc("miss")

	tables, err := l.core.Store().UserTableStore().ListPublic(l.ctx, nil)
	if err != nil {
		return nil, errors.New("PublicLogic.loadPublicTables.ListPublic", i18n.ERROR_INTERNAL, err)
	}

	if raw, err := json.Marshal(tables); err == nil {
		if err := l.core.Cache().SetEx(l.ctx, types.CACHE_KEY_PUBLIC_TABLES, string(raw), types.CACHE_TTL_PUBLIC_TABLES); err != nil {
			slog.Warn("Failed to cache public tables", slog.Any("error", err))
		}
	}
	return tables, nil
}

// WarmPublicTablesCache 预热公开表缓存，后台任务周期调用
func WarmPublicTablesCache(ctx context.Context, core *core.Core) error {
	tables, err := core.Store().UserTableStore().ListPublic(ctx, nil)
	if err != nil {
		return errors.New("WarmPublicTablesCache.ListPublic", i18n.ERROR_INTERNAL, err)
	}
	raw, err := json.Marshal(tables)
	if err != nil {
		return errors.New("WarmPublicTablesCache.Marshal", i18n.ERROR_INTERNAL, err)
	}
	return core.Cache().SetEx(ctx, types.CACHE_KEY_PUBLIC_TABLES, string(raw), types.CACHE_TTL_PUBLIC_TABLES)
}

// accessibleTableIDs 令牌可访问的公开表ID集合，升序排列
func (l *PublicLogic) accessibleTableIDs() ([]string, error) {
	tables, err := l.ListPublicTables()
	if err != nil {
		return nil, err
	}
	ids := lo.Map(tables, func(t types.PublicTable, _ int) string { return t.ID })
	sort.Strings(ids)
	return ids, nil
}

// requireAccessible 校验某表对当前令牌公开可见，否则按不存在处理
func (l *PublicLogic) requireAccessible(tableID string) (*types.PublicTable, error) {
	tables, err := l.ListPublicTables()
	if err != nil {
		return nil, err
	}
	for i := range tables {
		if tables[i].ID == tableID {
			return &tables[i], nil
		}
	}
	return nil, errors.New("PublicLogic.requireAccessible.notfound", i18n.ERROR_TABLE_NOT_PUBLIC, nil).Code(http.StatusNotFound)
}

// SearchTablesByColumns 返回同时包含所有指定列的公开表
func (l *PublicLogic) SearchTablesByColumns(columnNames []string) ([]types.PublicTable, error) {
	if len(columnNames) == 0 {
		return nil, errors.New("PublicLogic.SearchTablesByColumns.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	tables, err := l.ListPublicTables()
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return []types.PublicTable{}, nil
	}

	tableIDs := lo.Map(tables, func(t types.PublicTable, _ int) string { return t.ID })
	columns, err := l.core.Store().TableColumnStore().ListByTables(l.ctx, tableIDs)
	if err != nil {
		return nil, errors.New("PublicLogic.SearchTablesByColumns.ListByTables", i18n.ERROR_INTERNAL, err)
	}

	byTable := lo.GroupBy(columns, func(c types.TableColumn) string { return c.TableID })

	wanted := lo.Map(columnNames, func(s string, _ int) string { return strings.ToLower(strings.TrimSpace(s)) })

	matched := lo.Filter(tables, func(t types.PublicTable, _ int) bool {
		have := map[string]bool{}
		for _, c := range byTable[t.ID] {
			have[strings.ToLower(c.Name)] = true
		}
		for _, w := range wanted {
			if !have[w] {
				return false
			}
		}
		return true
	})
	if matched == nil {
		matched = []types.PublicTable{}
	}
	return matched, nil
}

// FlatRecord 展平后的行：系统字段与数据字段同级
type FlatRecord map[string]any

func flattenRecord(row types.TableRow) FlatRecord {
	flat := make(FlatRecord, len(row.Data)+4)
	for k, v := range row.Data {
		flat[k] = v
	}
	flat["id"] = row.ID
	flat["table_id"] = row.TableID
	flat["created_at"] = row.CreatedAt
	flat["updated_at"] = row.UpdatedAt
	return flat
}

type PublicItemsResult struct {
	Items []FlatRecord `json:"items"`
	Total uint64       `json:"total"`
}

// ListTableItems 列出某公开表的条目。flat 为 false 时保留
// data 子对象结构
func (l *PublicLogic) ListTableItems(tableID string, filters map[string]string, flat bool, limit, offset uint64) (any, error) {
	if _, err := l.requireAccessible(tableID); err != nil {
		return nil, err
	}

	limit = l.normalizeLimit(limit)

	opts := types.ListRowOptions{TableID: tableID, Filters: filters}
	total, err := l.core.Store().TableRowStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("PublicLogic.ListTableItems.Total", i18n.ERROR_INTERNAL, err)
	}
	rows, err := l.core.Store().TableRowStore().ListWindow(l.ctx, opts, "", limit, offset)
	if err != nil {
		return nil, errors.New("PublicLogic.ListTableItems.List", i18n.ERROR_INTERNAL, err)
	}

	if !flat {
		if rows == nil {
			rows = []types.TableRow{}
		}
		return map[string]any{"items": rows, "total": total}, nil
	}

	items := lo.Map(rows, func(row types.TableRow, _ int) FlatRecord {
		return flattenRecord(row)
	})
	if items == nil {
		items = []FlatRecord{}
	}
	return &PublicItemsResult{Items: items, Total: total}, nil
}

// GetTableItem 获取公开表单条目，展平返回
func (l *PublicLogic) GetTableItem(tableID, itemID string) (FlatRecord, error) {
	if _, err := l.requireAccessible(tableID); err != nil {
		return nil, err
	}

	row, err := l.core.Store().TableRowStore().Get(l.ctx, tableID, itemID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("PublicLogic.GetTableItem.Get", i18n.ERROR_INTERNAL, err)
	}
	if err == sql.ErrNoRows || row == nil {
		return nil, errors.New("PublicLogic.GetTableItem.notfound", i18n.ERROR_ROW_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return flattenRecord(*row), nil
}

type AvailabilityResult struct {
	Available bool    `json:"available"`
	Quantity  float64 `json:"quantity,omitempty"`
	Used      bool    `json:"used,omitempty"`
}

// CheckAvailability 可用性判定。sale 表看剩余数量，
// rent 表看 used 标记
func (l *PublicLogic) CheckAvailability(tableID, itemID string, requested float64) (*AvailabilityResult, error) {
	table, err := l.requireAccessible(tableID)
	if err != nil {
		return nil, err
	}

	item, err := l.GetTableItem(tableID, itemID)
	if err != nil {
		return nil, err
	}

	if requested <= 0 {
		requested = 1
	}

	switch table.TableType {
	case types.TableTypeRent:
		used := false
		switch v := item["used"].(type) {
		case bool:
			used = v
		case string:
			used = strings.EqualFold(v, "true")
		}
		return &AvailabilityResult{Available: !used, Used: used}, nil
	default:
		qty := quantityOf(item)
		return &AvailabilityResult{Available: qty >= requested, Quantity: qty}, nil
	}
}

type QueryRecordsArgs struct {
	TableIDs []string
	Filters  map[string]string
	Columns  []string
	Limit    uint64
	Offset   uint64
}

type QueryRecordsResult struct {
	Records []FlatRecord `json:"records"`
	Total   uint64       `json:"total"`
	Limit   uint64       `json:"limit"`
	Offset  uint64       `json:"offset"`
}

// QueryRecords 跨表查询展平记录，结果整体走 TTL 缓存。
// 缓存键由表集合哈希、过滤条件哈希与分页窗口构成
func (l *PublicLogic) QueryRecords(args QueryRecordsArgs) (*QueryRecordsResult, error) {
	accessible, err := l.accessibleTableIDs()
	if err != nil {
		return nil, err
	}
	if len(args.TableIDs) == 0 {
		args.TableIDs = accessible
	} else {
		allowed := lo.SliceToMap(accessible, func(id string) (string, bool) { return id, true })
		for _, id := range args.TableIDs {
			if !allowed[id] {
				return nil, errors.New("PublicLogic.QueryRecords.access", i18n.ERROR_TABLE_NOT_PUBLIC, nil).Code(http.StatusNotFound)
			}
		}
	}
	if len(args.TableIDs) == 0 {
		return &QueryRecordsResult{Records: []FlatRecord{}}, nil
	}

	args.Limit = l.normalizeLimit(args.Limit)

	sorted := append([]string(nil), args.TableIDs...)
	sort.Strings(sorted)
	cacheKey := fmt.Sprintf(types.CACHE_KEY_QUERY_TEMPLATE,
		utils.ShortHash(strings.Join(sorted, ",")),
		utils.HashQueryFilters(args.Filters),
		args.Limit, args.Offset)

	if raw, err := l.core.Cache().Get(l.ctx, cacheKey); err == nil && raw != "" {
		var cached QueryRecordsResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			l.core.Metrics().QueryCacheInc("hit")
			return &cached, nil
		}
	}
	l.core.Metrics().QueryCacheInc("miss")

	opts := types.ListRowOptions{TableIDs: sorted, Filters: args.Filters}
	total, err := l.core.Store().TableRowStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("PublicLogic.QueryRecords.Total", i18n.ERROR_INTERNAL, err)
	}

	rows, err := l.core.Store().TableRowStore().ListWindow(l.ctx, opts, "", args.Limit, args.Offset)
	if err != nil {
		return nil, errors.New("PublicLogic.QueryRecords.List", i18n.ERROR_INTERNAL, err)
	}

	records := lo.Map(rows, func(row types.TableRow, _ int) FlatRecord {
		flat := flattenRecord(row)
		if len(args.Columns) > 0 {
			projected := make(FlatRecord, len(args.Columns)+2)
			projected["id"] = flat["id"]
			projected["table_id"] = flat["table_id"]
			for _, col := range args.Columns {
				if v, ok := flat[col]; ok {
					projected[col] = v
				}
			}
			return projected
		}
		return flat
	})
	if records == nil {
		records = []FlatRecord{}
	}

	result := &QueryRecordsResult{
		Records: records,
		Total:   total,
		Limit:   args.Limit,
		Offset:  args.Offset,
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := l.core.Cache().SetEx(l.ctx, cacheKey, string(raw), types.CACHE_TTL_QUERY_RESULTS); err != nil {
			slog.Warn("Failed to cache query results", slog.String("key", cacheKey), slog.Any("error", err))
		}
	}
	return result, nil
}

// DistinctValues 某列在全部可见表中的去重取值
func (l *PublicLogic) DistinctValues(column string, filters map[string]string) ([]string, error) {
	if strings.TrimSpace(column) == "" {
		return nil, errors.New("PublicLogic.DistinctValues.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	tableIDs, err := l.accessibleTableIDs()
	if err != nil {
		return nil, err
	}
	if len(tableIDs) == 0 {
		return []string{}, nil
	}

	values, err := l.core.Store().TableRowStore().DistinctValues(l.ctx, tableIDs, column, filters)
	if err != nil {
		return nil, errors.New("PublicLogic.DistinctValues.DistinctValues", i18n.ERROR_INTERNAL, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (l *PublicLogic) normalizeLimit(limit uint64) uint64 {
	q := l.core.Cfg().Query
	if limit == 0 {
		return q.DefaultLimit
	}
	if limit > q.MaxLimit {
		return q.MaxLimit
	}
	return limit
}
