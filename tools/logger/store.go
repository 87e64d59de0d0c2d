package logger

import (
	"time"

	"gorm.io/gorm"
)

// LogEntry 业务日志的数据库镜像
type LogEntry struct {
	ID        uint      `json:"id" gorm:"column:id;primaryKey"`
	SessionID string    `json:"session_id" gorm:"column:session_id;size:64;index"`
	Category  string    `json:"category" gorm:"column:category;size:32;index"`
	Message   string    `json:"message" gorm:"column:message;type:text"`
	LoggedAt  time.Time `json:"logged_at" gorm:"column:logged_at;index"`
}

func (LogEntry) TableName() string {
	return "crm_log_entries"
}

// GormSink 把 Journal 的每条日志写入数据库
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

// Migrate 创建或更新表结构
func (s *GormSink) Migrate() error {
	return s.db.AutoMigrate(&LogEntry{})
}

func (s *GormSink) Store(entry Entry) error {
	row := &LogEntry{
		SessionID: entry.SessionID,
		Category:  string(entry.Category),
		Message:   entry.Message,
		LoggedAt:  entry.Time,
	}
	return s.db.Create(row).Error
}
