package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// utcDayExpr 构建按 UTC 日历日分桶的日期表达式，兼容 sqlite 与 postgres。
// 点击与转化的 created_at 均以 UTC 写入，sqlite 直接取日期即可。
func utcDayExpr(db *gorm.DB, column string) string {
	return utcDayExprByDialect(dbDialectName(db), column)
}

func utcDayExprByDialect(dialect, column string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "to_char((" + column + " AT TIME ZONE 'UTC'), 'YYYY-MM-DD')"
	default:
		return "CAST(date(" + column + ") AS TEXT)"
	}
}
