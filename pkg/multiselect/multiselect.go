package multiselect

import "strings"

// 分组多选值的存储形态：逗号连接的 value:variant 令牌，
// variant 只有 personal / business 两种。不带可识别后缀的
// 令牌不属于该编码，按原样透传。

const (
	VariantPersonal = "personal"
	VariantBusiness = "business"
)

// GroupedValue 解码后的分组多选值
type GroupedValue struct {
	Personal  []string `json:"personal"`
	Business  []string `json:"business"`
	Ungrouped []string `json:"ungrouped,omitempty"`
}

// Encode 按 personal 在前、business 在后的顺序拼接令牌。
// 顺序只是输出约定，解码端将其视为集合
func Encode(v GroupedValue) string {
	tokens := make([]string, 0, len(v.Personal)+len(v.Business)+len(v.Ungrouped))
	for _, p := range v.Personal {
		tokens = append(tokens, p+":"+VariantPersonal)
	}
	for _, b := range v.Business {
		tokens = append(tokens, b+":"+VariantBusiness)
	}
	tokens = append(tokens, v.Ungrouped...)
	return strings.Join(tokens, ",")
}

// Decode 以最后一个冒号切分令牌。后缀不是 personal/business 的
// 整个令牌进入 Ungrouped
func Decode(s string) GroupedValue {
	var v GroupedValue
	if s == "" {
		return v
	}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx := strings.LastIndex(token, ":")
		if idx == -1 {
			v.Ungrouped = append(v.Ungrouped, token)
			continue
		}
		value, variant := token[:idx], token[idx+1:]
		switch variant {
		case VariantPersonal:
			v.Personal = append(v.Personal, value)
		case VariantBusiness:
			v.Business = append(v.Business, value)
		default:
			v.Ungrouped = append(v.Ungrouped, token)
		}
	}
	return v
}

// Contains 判断某个 value:variant 选择是否存在
func (v GroupedValue) Contains(value, variant string) bool {
	var list []string
	switch variant {
	case VariantPersonal:
		list = v.Personal
	case VariantBusiness:
		list = v.Business
	default:
		return false
	}
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Option 模块列类型提供的原始选项
type Option struct {
	Value string         `json:"value"`
	Label string         `json:"label"`
	Raw   map[string]any `json:"raw,omitempty"`
}

// VariantOption 展开后的可选项，带 variant 徽标
type VariantOption struct {
	Value   string `json:"value"` // value:variant 形式
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

// ExpandOptions 按 raw.business 三态展开选项：
// true 只给 business，false 只给 personal，null/缺失两者都给
// （一个原始选项产出两个可独立选择的合成选项）。
func ExpandOptions(options []Option) []VariantOption {
	var out []VariantOption
	for _, opt := range options {
		business, hasFlag := opt.Raw["business"].(bool)
		switch {
		case hasFlag && business:
			out = append(out, VariantOption{
				Value:   opt.Value + ":" + VariantBusiness,
				Label:   opt.Label,
				Variant: VariantBusiness,
			})
		case hasFlag && !business:
			out = append(out, VariantOption{
				Value:   opt.Value + ":" + VariantPersonal,
				Label:   opt.Label,
				Variant: VariantPersonal,
			})
		default:
			out = append(out,
				VariantOption{
					Value:   opt.Value + ":" + VariantPersonal,
					Label:   opt.Label,
					Variant: VariantPersonal,
				},
				VariantOption{
					Value:   opt.Value + ":" + VariantBusiness,
					Label:   opt.Label,
					Variant: VariantBusiness,
				})
		}
	}
	return out
}
