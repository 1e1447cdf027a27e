package service

import (
	"testing"
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpirySweeperRunOnce(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	eng := engine.New(database.NewLicenseStore(database.DB), Auditor{})
	sweeper := NewExpirySweeper(eng, time.Hour, 7)

	yesterday := time.Now().AddDate(0, 0, -1)
	inThreeDays := time.Now().AddDate(0, 0, 3)
	nextYear := time.Now().AddDate(1, 0, 0)

	licenses := []*model.License{
		{Key: "SW-PAST", Status: model.StatusActive, ActivationLimit: 1, ExpiryDate: &yesterday, ActivatedDomains: model.DomainList{}},
		{Key: "SW-SOON", Status: model.StatusActive, ActivationLimit: 1, ExpiryDate: &inThreeDays, ActivatedDomains: model.DomainList{}},
		{Key: "SW-FINE", Status: model.StatusActive, ActivationLimit: 1, ExpiryDate: &nextYear, ActivatedDomains: model.DomainList{}},
	}
	for _, lic := range licenses {
		require.NoError(t, database.DB.Create(lic).Error)
	}

	flipped, warned := sweeper.RunOnce()
	assert.Equal(t, 1, flipped)
	assert.Equal(t, 1, warned)

	// 过期翻转已落库
	var past model.License
	database.DB.Where("key = ?", "SW-PAST").First(&past)
	assert.Equal(t, model.StatusExpired, past.Status)

	// 窗口外的许可证不受影响
	var fine model.License
	database.DB.Where("key = ?", "SW-FINE").First(&fine)
	assert.Equal(t, model.StatusActive, fine.Status)

	// 同一到期日只提醒一次
	flipped, warned = sweeper.RunOnce()
	assert.Equal(t, 0, flipped)
	assert.Equal(t, 0, warned)

	// 提醒写入了审计日志
	var count int64
	database.DB.Model(&model.ActivityLog{}).
		Where("license_key = ? AND action = ?", "SW-SOON", "license_expiring").
		Count(&count)
	assert.EqualValues(t, 1, count)
}
