package model

import "time"

// DailyActivations 每日激活统计
type DailyActivations struct {
	Date        time.Time `json:"date"`
	Activations int       `json:"activations"`
}

// LicenseStatistics 许可证统计信息
type LicenseStatistics struct {
	TotalLicenses     int64              `json:"total_licenses"`
	ActiveLicenses    int64              `json:"active_licenses"`
	InactiveLicenses  int64              `json:"inactive_licenses"`
	ExpiredLicenses   int64              `json:"expired_licenses"`
	ExpiringLicenses  int64              `json:"expiring_licenses"`
	LicensesByProduct map[string]int     `json:"licenses_by_product"`
	DailyActivations  []DailyActivations `json:"daily_activations"`
	TotalActivations  int64              `json:"total_activations"`
	FailedActivations int64              `json:"failed_activations"`
}

// GetSuccessRate 计算激活成功率
func (ls *LicenseStatistics) GetSuccessRate() float64 {
	if ls.TotalActivations == 0 {
		return 0
	}
	return float64(ls.TotalActivations-ls.FailedActivations) / float64(ls.TotalActivations)
}

// GetUsageByProduct 获取指定产品的许可证数量
func (ls *LicenseStatistics) GetUsageByProduct(product string) int {
	if count, ok := ls.LicensesByProduct[product]; ok {
		return count
	}
	return 0
}
