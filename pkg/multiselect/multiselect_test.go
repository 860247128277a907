package multiselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  GroupedValue
	}{
		{
			name:  "mixed variants",
			input: "alice:personal,acme:business,bob:personal",
			want: GroupedValue{
				Personal: []string{"alice", "bob"},
				Business: []string{"acme"},
			},
		},
		{
			name:  "empty string",
			input: "",
			want:  GroupedValue{},
		},
		{
			name:  "tokens without variant suffix pass through",
			input: "alice:personal,plainvalue,other",
			want: GroupedValue{
				Personal:  []string{"alice"},
				Ungrouped: []string{"plainvalue", "other"},
			},
		},
		{
			name:  "value containing colon splits on last colon",
			input: "http://a:personal",
			want: GroupedValue{
				Personal: []string{"http://a"},
			},
		},
		{
			name:  "unknown suffix keeps whole token",
			input: "alice:manager",
			want: GroupedValue{
				Ungrouped: []string{"alice:manager"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.input))
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := []string{
		"a:personal,b:business",
		"a:personal,a:business",
		"x:business",
		"a:personal,plain,b:business",
	}
	for _, in := range inputs {
		decoded := Decode(in)
		again := Decode(Encode(decoded))
		assert.Equal(t, decoded, again, "round trip for %q", in)
	}
}

func TestExpandOptions(t *testing.T) {
	options := []Option{
		{Value: "vip", Label: "VIP", Raw: map[string]any{"business": true}},
		{Value: "basic", Label: "Basic", Raw: map[string]any{"business": false}},
		{Value: "both", Label: "Both", Raw: map[string]any{"business": nil}},
		{Value: "unset", Label: "Unset"},
	}

	out := ExpandOptions(options)

	var values []string
	for _, o := range out {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{
		"vip:business",
		"basic:personal",
		"both:personal", "both:business",
		"unset:personal", "unset:business",
	}, values)
}

func TestContains(t *testing.T) {
	v := Decode("alice:personal,acme:business")
	assert.True(t, v.Contains("alice", VariantPersonal))
	assert.True(t, v.Contains("acme", VariantBusiness))
	assert.False(t, v.Contains("alice", VariantBusiness))
	assert.False(t, v.Contains("acme", "manager"))
}
