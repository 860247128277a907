package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gridbase/gridbase/pkg/types"
)

// Validate 将未定型输入按列定义逐列转换为规范值。
// 默认值在校验前填充；未知键、缺失必填、类型不符都会记入错误。
// 返回的错误列表为全量报告，任何错误都意味着整次写入被拒绝。
func Validate(columns []types.TableColumn, raw map[string]any) (types.RowData, []string) {
	var errs []string

	byName := make(map[string]types.TableColumn, len(columns))
	for _, col := range columns {
		byName[col.Name] = col
	}

	for _, key := range sortedKeys(raw) {
		if _, ok := byName[key]; !ok {
			errs = append(errs, fmt.Sprintf("unknown column %q", key))
		}
	}

	validated := make(types.RowData, len(columns))
	for _, col := range columns {
		value, present := raw[col.Name]
		if !present || value == nil || value == "" {
			if col.DefaultValue != "" {
				value = col.DefaultValue
			} else if col.IsRequired {
				errs = append(errs, fmt.Sprintf("column %q is required", col.Name))
				continue
			} else {
				continue
			}
		}

		coerced, err := CoerceValue(col.ColumnType, value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("column %q: %s", col.Name, err.Error()))
			continue
		}
		validated[col.Name] = coerced
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return validated, nil
}

var (
	colorRE = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9 ()\-]{3,32}$`)
)

// CoerceValue 按列类型转换单个值。模块类型按冒号后的基础类型校验，
// 未识别的基础类型按自由文本处理
func CoerceValue(columnType types.ColumnType, value any) (any, error) {
	switch columnType.BaseType() {
	case types.ColumnTypeInteger, types.ColumnTypeRating:
		return coerceInteger(value)
	case types.ColumnTypeFloat, types.ColumnTypeCurrency, types.ColumnTypePercentage, types.ColumnTypeNumber:
		return coerceFloat(value)
	case types.ColumnTypeBoolean:
		return coerceBool(value)
	case types.ColumnTypeCountry:
		return coerceCountry(value)
	case types.ColumnTypeDate:
		return coerceTime(value, "must be a valid date", "2006-01-02")
	case types.ColumnTypeTime:
		return coerceTime(value, "must be a valid time", "15:04:05", "15:04")
	case types.ColumnTypeDatetime:
		return coerceTime(value, "must be a valid datetime", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05")
	case types.ColumnTypeEmail:
		return coerceEmail(value)
	case types.ColumnTypeURL:
		return coerceURL(value)
	case types.ColumnTypePhone:
		return coercePhone(value)
	case types.ColumnTypeColor:
		return coerceColor(value)
	default:
		// text / textarea / 未识别模块类型
		return stringify(value), nil
	}
}

func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("must be an integer")
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("must be an integer")
		}
		return n, nil
	}
	return nil, fmt.Errorf("must be an integer")
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return f, nil
	}
	return nil, fmt.Errorf("must be a number")
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.TrimSpace(v) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, fmt.Errorf("must be true or false")
}

func coerceCountry(value any) (any, error) {
	s := strings.ToUpper(strings.TrimSpace(stringify(value)))
	if len(s) != 2 || !isAlpha(s) {
		return nil, fmt.Errorf("must be a 2-letter country code")
	}
	return s, nil
}

func coerceTime(value any, msg string, layouts ...string) (any, error) {
	s := strings.TrimSpace(stringify(value))
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%s", msg)
}

func coerceEmail(value any) (any, error) {
	s := strings.TrimSpace(stringify(value))
	if _, err := mail.ParseAddress(s); err != nil {
		return nil, fmt.Errorf("must be a valid email address")
	}
	return s, nil
}

func coerceURL(value any) (any, error) {
	s := strings.TrimSpace(stringify(value))
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("must be a valid url")
	}
	return s, nil
}

func coercePhone(value any) (any, error) {
	s := strings.TrimSpace(stringify(value))
	if !phoneRE.MatchString(s) {
		return nil, fmt.Errorf("must be a valid phone number")
	}
	return s, nil
}

func coerceColor(value any) (any, error) {
	s := strings.TrimSpace(stringify(value))
	if !colorRE.MatchString(s) {
		return nil, fmt.Errorf("must be a hex color like #A1B2C3")
	}
	return s, nil
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
