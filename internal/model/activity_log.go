package model

import (
	"time"

	"gorm.io/gorm"
)

// ActivityLog 许可证操作审计记录，每次成功的状态变更写入一条
type ActivityLog struct {
	gorm.Model
	LicenseKey string    `json:"license_key" gorm:"index"`
	Action     string    `json:"action"` // "license_activated", "license_deactivated" 等
	Domain     string    `json:"domain"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
}
