package service

import (
	"log"
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/model"
)

// LogActivity 写入一条许可证审计记录
func LogActivity(licenseKey, action, domain, details string) error {
	entry := &model.ActivityLog{
		LicenseKey: licenseKey,
		Action:     action,
		Domain:     domain,
		Details:    details,
		Timestamp:  time.Now(),
	}
	return database.DB.Create(entry).Error
}

// LogClientRequest 记录客户端请求来源（IP / User-Agent）
func LogClientRequest(licenseKey, action, domain, ip, userAgent string) {
	entry := &model.ActivityLog{
		LicenseKey: licenseKey,
		Action:     action,
		Domain:     domain,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Timestamp:  time.Now(),
	}
	if err := database.DB.Create(entry).Error; err != nil {
		log.Printf("写入请求记录失败: %v", err)
	}
}

// Auditor 实现激活引擎的审计接口，落库失败只记日志不影响请求
type Auditor struct{}

func (Auditor) Record(licenseKey, action, domain, details string) {
	if err := LogActivity(licenseKey, action, domain, details); err != nil {
		log.Printf("写入审计记录失败: %v", err)
	}
}

// GetActivityLogs 分页查询指定许可证的审计记录，key 为空时查询全部
func GetActivityLogs(licenseKey string, page, pageSize int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	db := database.DB.Model(&model.ActivityLog{})
	if licenseKey != "" {
		db = db.Where("license_key = ?", licenseKey)
	}

	// 获取总数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	offset := (page - 1) * pageSize
	if err := db.Order("timestamp DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
