package main

import (
	"log"
	"time"

	"license-activation-server/internal/config"
	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/handler"
	"license-activation-server/internal/middleware"
	"license-activation-server/internal/service"
	"license-activation-server/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	// 未配置的密钥在启动时生成，只打印一次
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = util.GenerateAPIKey()
		log.Println("未配置 JWT_SECRET，已生成临时密钥（重启后令牌失效）")
	}
	if cfg.ClientAPIKey == "" {
		cfg.ClientAPIKey = util.GenerateAPIKey()
		log.Println("未配置 CLIENT_API_KEY，本次运行使用:", cfg.ClientAPIKey)
	}
	util.InitJWT(cfg.JWTSecret)

	// 初始化数据库
	database.InitDB(cfg)

	// 激活引擎与协作组件
	store := database.NewLicenseStore(database.DB)
	eng := engine.New(store, service.Auditor{})

	sheetSync, err := service.NewSheetSyncService(cfg.SheetSyncEnabled, cfg.CredentialPath, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Println("Sheet 导出初始化失败，已禁用:", err)
		sheetSync = nil
	}
	handler.Init(eng, sheetSync)

	// 过期扫描
	sweeper := service.NewExpirySweeper(eng, cfg.SweepInterval, cfg.ExpiryWarningDays)
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// 中间件
	app.Use(logger.New())
	app.Use(cors.New())

	// 路由组
	api := app.Group("/api/v1")

	// 客户端接口：API密钥 + 限流
	client := api.Group("/client")
	client.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))
	client.Use(middleware.ClientAPIKey(cfg.ClientAPIKey))
	client.Post("/activate", handler.HandleClientActivate)
	client.Post("/deactivate", handler.HandleClientDeactivate)
	client.Post("/validate", handler.HandleClientValidate)
	client.Post("/info", handler.HandleClientInfo)
	client.Post("/update_check", handler.HandleClientUpdateCheck)

	// 认证路由
	auth := api.Group("/auth")
	auth.Post("/validate-token", handler.HandleValidateToken)
	auth.Post("/change-password", middleware.Auth(), handler.HandleChangePassword)

	// 用户路由
	users := api.Group("/users")
	users.Post("/register", middleware.Auth(), middleware.AdminOnly(), handler.HandleUserRegister)
	users.Post("/login", handler.HandleUserLogin)
	users.Get("/info", middleware.Auth(), handler.HandleUserInfo)

	// 许可证管理路由（管理员专用）
	licenses := api.Group("/licenses")
	licenses.Use(middleware.Auth(), middleware.AdminOnly())
	licenses.Get("/", handler.HandleGetAllLicenses)
	licenses.Post("/", handler.HandleLicenseCreate)
	licenses.Get("/statistics", handler.HandleLicenseStatistics)
	licenses.Get("/logs", handler.HandleGetActivityLogs)
	licenses.Post("/bulk/activate", handler.HandleBulkActivate)
	licenses.Post("/bulk/deactivate", handler.HandleBulkDeactivate)
	licenses.Post("/bulk/extend", handler.HandleBulkExtend)
	licenses.Post("/bulk/status", handler.HandleBulkSetStatus)
	licenses.Get("/:key", handler.HandleGetLicense)
	licenses.Put("/:key", handler.HandleLicenseUpdate)
	licenses.Delete("/:key", handler.HandleLicenseDelete)
	licenses.Post("/:key/extend", handler.HandleExtendExpiry)
	licenses.Delete("/:key/domains", handler.HandleAdminDeactivateDomain)

	// 产品管理路由
	products := api.Group("/products")
	products.Use(middleware.Auth(), middleware.AdminOnly())
	products.Get("/", handler.HandleGetAllProducts)
	products.Post("/", handler.HandleProductCreate)
	products.Put("/:slug", handler.HandleProductUpdate)

	log.Fatal(app.Listen(cfg.ListenAddr))
}
