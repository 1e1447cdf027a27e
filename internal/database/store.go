package database

import (
	"errors"

	"license-activation-server/internal/model"

	"gorm.io/gorm"
)

// LicenseStore 基于 gorm 的许可证记录存储，实现 engine.Store
type LicenseStore struct {
	db *gorm.DB
}

func NewLicenseStore(db *gorm.DB) *LicenseStore {
	return &LicenseStore{db: db}
}

func (s *LicenseStore) GetByKey(key string) (*model.License, error) {
	var lic model.License
	err := s.db.Where("key = ?", key).First(&lic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lic, nil
}

// SaveCAS 带版本号比较的写回：WHERE 条件同时匹配 key 和 revision，
// 没有命中任何行说明版本已被并发写入者推进，返回 false 让引擎重试。
func (s *LicenseStore) SaveCAS(lic *model.License, expectedRevision int64) (bool, error) {
	res := s.db.Model(&model.License{}).
		Where("key = ? AND revision = ?", lic.Key, expectedRevision).
		Updates(map[string]interface{}{
			"status":            lic.Status,
			"expiry_date":       lic.ExpiryDate,
			"activated_domains": lic.ActivatedDomains,
			"revision":          expectedRevision + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	lic.Revision = expectedRevision + 1
	return true, nil
}
