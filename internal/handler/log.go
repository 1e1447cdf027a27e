package handler

import (
	"strconv"

	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleGetActivityLogs 查询审计记录，可按许可证密钥过滤
func HandleGetActivityLogs(c *fiber.Ctx) error {
	// 获取分页参数
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	// 限制页面大小
	if pageSize > 100 {
		pageSize = 100
	}

	logs, total, err := service.GetActivityLogs(c.Query("key"), page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取审计记录失败",
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}
