package database

import (
	// 預設驅動 "sqlite"，純 Go 不需 cgo
	_ "modernc.org/sqlite"
	// 可選驅動 "sqlite3"，需以 CGO_ENABLED=1 建置
	_ "github.com/mattn/go-sqlite3"
)
