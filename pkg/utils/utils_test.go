package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenUniqIDStr(t *testing.T) {
	SetupIDWorker(1)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenUniqIDStr()
		assert.NotEmpty(t, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func Test_ParseAcceptLanguage(t *testing.T) {
	res := ParseAcceptLanguage("zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	assert.NotEmpty(t, res)
	assert.Equal(t, "zh-CN", res[0].Tag)
}

func TestIsValidColumnName(t *testing.T) {
	assert.True(t, IsValidColumnName("brand name"))
	assert.False(t, IsValidColumnName("price2"))
	assert.False(t, IsValidColumnName(""))
}
