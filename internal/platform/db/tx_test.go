package db

import "database/sql"

// Both the pool and a transaction back the store query helpers.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
