package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "gridbase_"

const (
	TABLE_USER_TABLE            = TableName("user_table")
	TABLE_TABLE_COLUMN          = TableName("table_column")
	TABLE_TABLE_ROW             = TableName("table_row")
	TABLE_INVENTORY_TRANSACTION = TableName("inventory_transaction")
	TABLE_ACCESS_TOKEN          = TableName("access_token")
)
