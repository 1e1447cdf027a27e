package handler

import (
	"license-activation-server/internal/database"
	"license-activation-server/internal/model"

	"github.com/gofiber/fiber/v2"
)

// ProductInput 管理端创建/更新产品的输入
type ProductInput struct {
	Slug           string `json:"slug" validate:"required"`
	Name           string `json:"name"`
	CurrentVersion string `json:"current_version"`
	DownloadURL    string `json:"download_url" validate:"omitempty,url"`
}

// HandleProductCreate 创建产品
func HandleProductCreate(c *fiber.Ctx) error {
	input := new(ProductInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "输入校验失败: " + err.Error(),
		})
	}

	product := &model.Product{
		Slug:           input.Slug,
		Name:           input.Name,
		CurrentVersion: input.CurrentVersion,
		DownloadURL:    input.DownloadURL,
	}

	if err := database.DB.Create(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "创建产品失败",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleProductUpdate 更新产品版本/下载地址
func HandleProductUpdate(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var product model.Product
	if err := database.DB.Where("slug = ?", slug).First(&product).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "产品不存在",
		})
	}

	input := new(ProductInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.CurrentVersion != "" {
		product.CurrentVersion = input.CurrentVersion
	}
	if input.DownloadURL != "" {
		product.DownloadURL = input.DownloadURL
	}

	if err := database.DB.Save(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "更新产品失败",
		})
	}

	return c.JSON(product)
}

// HandleGetAllProducts 产品列表
func HandleGetAllProducts(c *fiber.Ctx) error {
	var products []model.Product
	if err := database.DB.Order("slug ASC").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取产品列表失败",
		})
	}

	return c.JSON(fiber.Map{
		"products": products,
	})
}
