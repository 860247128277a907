package i18n

const DEFAULT_LANG = "en"

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_VALIDATION         = "error.validation"
	ERROR_DUPLICATE_VALUE    = "error.duplicate.value"
	ERROR_TABLE_NOT_FOUND    = "error.table.notfound"
	ERROR_ROW_NOT_FOUND      = "error.row.notfound"
	ERROR_COLUMN_NOT_FOUND   = "error.column.notfound"
	ERROR_COLUMN_NAME_TAKEN  = "error.column.name.taken"
	ERROR_COLUMN_NAME_FORMAT = "error.column.name.format"
	ERROR_COLUMN_PROTECTED   = "error.column.protected"
	ERROR_UNKNOWN_ACTION     = "error.unknown.action"
	ERROR_MALFORMED_BODY     = "error.malformed.body"
	ERROR_TABLE_NOT_PUBLIC   = "error.table.not_public"
)
