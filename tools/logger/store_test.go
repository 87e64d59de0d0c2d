package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB 不连接数据库，只生成 SQL
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/crm?charset=utf8mb4&parseTime=True&loc=Local",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func TestGormSinkStore(t *testing.T) {
	db := dryRunDB(t)

	var statements []string
	var vars [][]interface{}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
		vars = append(vars, tx.Statement.Vars)
	}))

	sink := NewGormSink(db)
	at := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	err := sink.Store(Entry{Time: at, SessionID: "sess-1", Category: CategoryError, Message: "boom"})
	require.NoError(t, err)

	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "INSERT INTO `crm_log_entries`")
	assert.Contains(t, statements[0], "`session_id`")
	assert.Contains(t, vars[0], "sess-1")
	assert.Contains(t, vars[0], "error")
	assert.Contains(t, vars[0], "boom")
}

func TestLogEntryTableName(t *testing.T) {
	assert.Equal(t, "crm_log_entries", LogEntry{}.TableName())
}
