package types

import "strings"

// ColumnType 列类型，封闭集合 + 模块类型（moduleId:columnTypeId）
type ColumnType string

const (
	ColumnTypeText       ColumnType = "text"
	ColumnTypeTextarea   ColumnType = "textarea"
	ColumnTypeNumber     ColumnType = "number"
	ColumnTypeInteger    ColumnType = "integer"
	ColumnTypeFloat      ColumnType = "float"
	ColumnTypeCurrency   ColumnType = "currency"
	ColumnTypePercentage ColumnType = "percentage"
	ColumnTypeBoolean    ColumnType = "boolean"
	ColumnTypeDate       ColumnType = "date"
	ColumnTypeTime       ColumnType = "time"
	ColumnTypeDatetime   ColumnType = "datetime"
	ColumnTypeEmail      ColumnType = "email"
	ColumnTypeURL        ColumnType = "url"
	ColumnTypePhone      ColumnType = "phone"
	ColumnTypeCountry    ColumnType = "country"
	ColumnTypeColor      ColumnType = "color"
	ColumnTypeRating     ColumnType = "rating"
)

var baseColumnTypes = map[ColumnType]bool{
	ColumnTypeText:       true,
	ColumnTypeTextarea:   true,
	ColumnTypeNumber:     true,
	ColumnTypeInteger:    true,
	ColumnTypeFloat:      true,
	ColumnTypeCurrency:   true,
	ColumnTypePercentage: true,
	ColumnTypeBoolean:    true,
	ColumnTypeDate:       true,
	ColumnTypeTime:       true,
	ColumnTypeDatetime:   true,
	ColumnTypeEmail:      true,
	ColumnTypeURL:        true,
	ColumnTypePhone:      true,
	ColumnTypeCountry:    true,
	ColumnTypeColor:      true,
	ColumnTypeRating:     true,
}

// ModuleColumnType 模块提供的列类型，格式为 moduleId:columnTypeId
type ModuleColumnType struct {
	ModuleID     string
	ColumnTypeID string
}

func (t ColumnType) IsBase() bool {
	return baseColumnTypes[t]
}

// ModuleType 解析模块类型标识，非模块类型返回 false
func (t ColumnType) ModuleType() (ModuleColumnType, bool) {
	if t.IsBase() {
		return ModuleColumnType{}, false
	}
	idx := strings.Index(string(t), ":")
	if idx <= 0 || idx == len(t)-1 {
		return ModuleColumnType{}, false
	}
	return ModuleColumnType{
		ModuleID:     string(t)[:idx],
		ColumnTypeID: string(t)[idx+1:],
	}, true
}

// BaseType 返回用于校验的基础类型。模块类型取冒号后的部分，
// 无法识别时按自由文本处理
func (t ColumnType) BaseType() ColumnType {
	if t.IsBase() {
		return t
	}
	if mt, ok := t.ModuleType(); ok {
		if base := ColumnType(mt.ColumnTypeID); base.IsBase() {
			return base
		}
	}
	return ColumnTypeText
}

// ParseColumnType 校验列类型是否合法（基础类型或 module:type 形式）
func ParseColumnType(s string) (ColumnType, bool) {
	t := ColumnType(s)
	if t.IsBase() {
		return t, true
	}
	if _, ok := t.ModuleType(); ok {
		return t, true
	}
	return "", false
}

// TableColumn 用户表的列定义
type TableColumn struct {
	ID              string     `json:"id" db:"id"`
	TableID         string     `json:"table_id" db:"table_id"`
	Name            string     `json:"name" db:"name"`
	ColumnType      ColumnType `json:"column_type" db:"column_type"`
	IsRequired      bool       `json:"is_required" db:"is_required"`
	AllowDuplicates bool       `json:"allow_duplicates" db:"allow_duplicates"`
	DefaultValue    string     `json:"default_value" db:"default_value"`
	Position        int        `json:"position" db:"position"`
	CreatedAt       int64      `json:"created_at" db:"created_at"`
	UpdatedAt       int64      `json:"updated_at" db:"updated_at"`
}

// UpdateTableColumnArgs 可编辑的列属性。受保护列会拒绝其中的结构性修改
type UpdateTableColumnArgs struct {
	Name            *string `json:"name"`
	IsRequired      *bool   `json:"is_required"`
	AllowDuplicates *bool   `json:"allow_duplicates"`
	DefaultValue    *string `json:"default_value"`
}
