package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/gridbase/pkg/types"
)

func col(name string, ct types.ColumnType) types.TableColumn {
	return types.TableColumn{Name: name, ColumnType: ct}
}

func requiredCol(name string, ct types.ColumnType) types.TableColumn {
	c := col(name, ct)
	c.IsRequired = true
	return c
}

func TestValidateCoercion(t *testing.T) {
	columns := []types.TableColumn{
		col("sku", types.ColumnTypeText),
		col("price", types.ColumnTypeCurrency),
		col("stock", types.ColumnTypeInteger),
		col("active", types.ColumnTypeBoolean),
		col("origin", types.ColumnTypeCountry),
	}

	data, errs := Validate(columns, map[string]any{
		"sku":    "A1",
		"price":  "19.99",
		"stock":  "7",
		"active": "true",
		"origin": "de",
	})
	require.Empty(t, errs)

	assert.Equal(t, "A1", data["sku"])
	assert.Equal(t, 19.99, data["price"])
	assert.Equal(t, int64(7), data["stock"])
	assert.Equal(t, true, data["active"])
	assert.Equal(t, "DE", data["origin"])
}

func TestValidateCollectsAllErrors(t *testing.T) {
	columns := []types.TableColumn{
		requiredCol("name", types.ColumnTypeText),
		col("price", types.ColumnTypeCurrency),
		col("stock", types.ColumnTypeInteger),
	}

	data, errs := Validate(columns, map[string]any{
		"price":   "not-a-number",
		"stock":   "1.5x",
		"unknown": "value",
	})

	assert.Nil(t, data)
	assert.Len(t, errs, 4)
	assert.Contains(t, errs, `unknown column "unknown"`)
	assert.Contains(t, errs, `column "name" is required`)
}

func TestValidateAppliesDefaultBeforeValidation(t *testing.T) {
	qty := requiredCol("qty", types.ColumnTypeInteger)
	qty.DefaultValue = "0"

	bad := requiredCol("rating", types.ColumnTypeRating)
	bad.DefaultValue = "not-an-int"

	data, errs := Validate([]types.TableColumn{qty}, map[string]any{})
	require.Empty(t, errs)
	assert.Equal(t, int64(0), data["qty"])

	// 默认值也要走类型校验
	_, errs = Validate([]types.TableColumn{bad}, map[string]any{})
	assert.Len(t, errs, 1)
}

func TestValidateOptionalMissingColumnOmitted(t *testing.T) {
	columns := []types.TableColumn{
		col("note", types.ColumnTypeTextarea),
	}
	data, errs := Validate(columns, map[string]any{})
	require.Empty(t, errs)
	_, exists := data["note"]
	assert.False(t, exists)
}

func TestCoerceValueFormats(t *testing.T) {
	tests := []struct {
		name    string
		ct      types.ColumnType
		input   any
		want    any
		wantErr bool
	}{
		{"integer from float without fraction", types.ColumnTypeInteger, 3.0, int64(3), false},
		{"integer rejects fraction", types.ColumnTypeInteger, 3.5, nil, true},
		{"rating parses base-10", types.ColumnTypeRating, "4", int64(4), false},
		{"percentage parses float", types.ColumnTypePercentage, "12.5", 12.5, false},
		{"boolean rejects yes", types.ColumnTypeBoolean, "yes", nil, true},
		{"date ok", types.ColumnTypeDate, "2024-02-29", "2024-02-29", false},
		{"date rejects bad calendar value", types.ColumnTypeDate, "2023-02-30", nil, true},
		{"time ok", types.ColumnTypeTime, "13:45", "13:45", false},
		{"datetime ok", types.ColumnTypeDatetime, "2024-01-02T10:00:00Z", "2024-01-02T10:00:00Z", false},
		{"color ok", types.ColumnTypeColor, "#A1b2C3", "#A1b2C3", false},
		{"color rejects short form", types.ColumnTypeColor, "#fff", nil, true},
		{"email ok", types.ColumnTypeEmail, "a@b.co", "a@b.co", false},
		{"email rejects junk", types.ColumnTypeEmail, "nope", nil, true},
		{"url ok", types.ColumnTypeURL, "https://example.com/x", "https://example.com/x", false},
		{"url rejects missing scheme", types.ColumnTypeURL, "example.com", nil, true},
		{"phone ok", types.ColumnTypePhone, "+49 (30) 1234-567", "+49 (30) 1234-567", false},
		{"country upper-cases", types.ColumnTypeCountry, "us", "US", false},
		{"country rejects 3 letters", types.ColumnTypeCountry, "USA", nil, true},
		{"text passes through", types.ColumnTypeText, "hello", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceValue(tt.ct, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceModuleTypeUsesBaseType(t *testing.T) {
	// contacts:integer 按 integer 校验
	got, err := CoerceValue(types.ColumnType("contacts:integer"), "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)

	// 基础类型无法识别时按自由文本处理
	got, err = CoerceValue(types.ColumnType("crm:customsel"), "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", got)
}
