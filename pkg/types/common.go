package types

const (
	NO_PAGINATION = 0

	// DEFAULT_PAGE_SIZE 列表接口默认分页大小
	DEFAULT_PAGE_SIZE = 20
	// MAX_PAGE_SIZE 列表接口允许的最大分页大小
	MAX_PAGE_SIZE = 100
)

const (
	LANGUAGE_EN_KEY = "en"
	LANGUAGE_CN_KEY = "zh-CN"
)

const DEFAULT_APPID = "gridbase"

// NormalizePagination 约束分页参数，page 从 1 开始，limit 上限 MAX_PAGE_SIZE
func NormalizePagination(page, limit uint64) (uint64, uint64) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DEFAULT_PAGE_SIZE
	}
	if limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}
	return page, limit
}
