package handler

import (
	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"

	"github.com/gofiber/fiber/v2"
)

// BulkKeyDomainInput 批量激活/解绑输入
type BulkKeyDomainInput struct {
	Items []engine.KeyDomain `json:"items" validate:"required,min=1,dive"`
}

// BulkKeysInput 批量延期/改状态输入
type BulkKeysInput struct {
	Keys   []string `json:"keys" validate:"required,min=1"`
	Days   int      `json:"days"`
	Status string   `json:"status"`
}

// HandleBulkActivate 批量激活（管理员身份，不受覆盖列表限制），逐键返回结果
func HandleBulkActivate(c *fiber.Ctx) error {
	input := new(BulkKeyDomainInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInputFailure(c, "无效的输入数据")
	}
	if err := validate.Struct(input); err != nil {
		return invalidInputFailure(c, "条目列表不能为空")
	}

	outcomes := eng.BulkActivate(input.Items, engine.CallerAdmin)
	syncOutcomes(outcomes)
	return apiSuccess(c, fiber.Map{"outcomes": outcomes})
}

// HandleBulkDeactivate 批量解绑（管理员身份，不受覆盖列表限制）
func HandleBulkDeactivate(c *fiber.Ctx) error {
	input := new(BulkKeyDomainInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInputFailure(c, "无效的输入数据")
	}
	if err := validate.Struct(input); err != nil {
		return invalidInputFailure(c, "条目列表不能为空")
	}

	outcomes := eng.BulkDeactivate(input.Items, engine.CallerAdmin)
	syncOutcomes(outcomes)
	return apiSuccess(c, fiber.Map{"outcomes": outcomes})
}

// HandleBulkExtend 批量延长有效期
func HandleBulkExtend(c *fiber.Ctx) error {
	input := new(BulkKeysInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInputFailure(c, "无效的输入数据")
	}
	if err := validate.Struct(input); err != nil {
		return invalidInputFailure(c, "密钥列表不能为空")
	}

	outcomes := eng.BulkExtendExpiry(input.Keys, input.Days)
	syncOutcomes(outcomes)
	return apiSuccess(c, fiber.Map{"outcomes": outcomes})
}

// HandleBulkSetStatus 批量修改状态
func HandleBulkSetStatus(c *fiber.Ctx) error {
	input := new(BulkKeysInput)
	if err := c.BodyParser(input); err != nil {
		return invalidInputFailure(c, "无效的输入数据")
	}
	if err := validate.Struct(input); err != nil {
		return invalidInputFailure(c, "密钥列表不能为空")
	}

	outcomes := eng.BulkSetStatus(input.Keys, input.Status)
	syncOutcomes(outcomes)
	return apiSuccess(c, fiber.Map{"outcomes": outcomes})
}

// syncOutcomes 批量操作后把成功的许可证一次性导出到 Sheet
func syncOutcomes(outcomes []engine.BulkOutcome) {
	if sheetSync == nil {
		return
	}

	keys := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) == 0 {
		return
	}

	go func() {
		var licenses []model.License
		if err := database.DB.Where("key IN ?", keys).Find(&licenses).Error; err != nil {
			return
		}
		batch := make([]*model.License, len(licenses))
		for i := range licenses {
			batch[i] = &licenses[i]
		}
		sheetSync.BatchSyncLicenses(batch)
	}()
}
