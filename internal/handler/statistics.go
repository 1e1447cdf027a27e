package handler

import (
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/model"

	"github.com/gofiber/fiber/v2"
)

var activationFailureActions = []string{
	"license_activation_failed",
	"license_activation_limit_reached",
	"license_activation_forbidden",
	"activate_rejected",
}

// HandleLicenseStatistics 处理许可证统计信息请求
func HandleLicenseStatistics(c *fiber.Ctx) error {
	// 获取查询参数
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	// 解析日期
	var start, end time.Time
	var err error

	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "开始日期格式错误，应为 YYYY-MM-DD",
			})
		}
	} else {
		// 默认为30天前
		start = time.Now().AddDate(0, 0, -30)
	}

	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "结束日期格式错误，应为 YYYY-MM-DD",
			})
		}
	} else {
		end = time.Now()
	}

	db := database.DB

	stats := &model.LicenseStatistics{
		LicensesByProduct: make(map[string]int),
		DailyActivations:  make([]model.DailyActivations, 0),
	}

	// 按状态统计许可证数量
	if err := db.Model(&model.License{}).Count(&stats.TotalLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取许可证总数失败",
		})
	}
	if err := db.Model(&model.License{}).Where("status = ?", model.StatusActive).Count(&stats.ActiveLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取活跃许可证数失败",
		})
	}
	if err := db.Model(&model.License{}).Where("status = ?", model.StatusInactive).Count(&stats.InactiveLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取未激活许可证数失败",
		})
	}
	if err := db.Model(&model.License{}).Where("status = ?", model.StatusExpired).Count(&stats.ExpiredLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取过期许可证数失败",
		})
	}

	// 统计即将过期的许可证数（30天内）
	thirtyDaysLater := time.Now().AddDate(0, 0, 30)
	if err := db.Model(&model.License{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", model.StatusActive, thirtyDaysLater).
		Count(&stats.ExpiringLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取即将过期许可证数失败",
		})
	}

	// 按产品统计许可证数量
	var productStats []struct {
		ProductID string
		Count     int
	}
	if err := db.Model(&model.License{}).
		Select("product_id, count(*) as count").
		Group("product_id").
		Scan(&productStats).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取产品统计失败",
		})
	}
	for _, ps := range productStats {
		stats.LicensesByProduct[ps.ProductID] = ps.Count
	}

	// 每日激活统计
	var dailyStats []model.DailyActivations
	if err := db.Model(&model.ActivityLog{}).
		Select("DATE(timestamp) as date, COUNT(*) as activations").
		Where("action = ? AND timestamp BETWEEN ? AND ?", "license_activated", start, end).
		Group("DATE(timestamp)").
		Order("date ASC").
		Scan(&dailyStats).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取每日激活统计失败",
		})
	}
	stats.DailyActivations = dailyStats

	// 激活总数与失败数
	if err := db.Model(&model.ActivityLog{}).
		Where("action = ?", "license_activated").
		Count(&stats.TotalActivations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取激活次数失败",
		})
	}
	if err := db.Model(&model.ActivityLog{}).
		Where("action IN ?", activationFailureActions).
		Count(&stats.FailedActivations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取失败激活次数失败",
		})
	}
	stats.TotalActivations += stats.FailedActivations

	return c.JSON(fiber.Map{
		"code":    200,
		"message": "success",
		"data":    stats,
	})
}
