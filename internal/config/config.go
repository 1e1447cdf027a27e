package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务运行配置，启动时一次性加载并显式传递，不做全局查找
type Config struct {
	ListenAddr   string
	DBPath       string
	JWTSecret    string
	ClientAPIKey string

	// 默认管理员账户（仅首次启动建库时使用）
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// 过期扫描
	SweepInterval     time.Duration
	ExpiryWarningDays int

	// Google Sheets 导出
	SheetSyncEnabled bool
	CredentialPath   string
	SpreadsheetID    string
	SheetName        string
}

// Load 从 .env 和环境变量加载配置
func Load() *Config {
	// .env 不存在时直接使用环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用环境变量")
	}

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "data/license.db"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		ClientAPIKey: getEnv("CLIENT_API_KEY", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),

		SweepInterval:     getDuration("SWEEP_INTERVAL", time.Hour),
		ExpiryWarningDays: getInt("EXPIRY_WARNING_DAYS", 7),

		SheetSyncEnabled: getBool("SHEET_SYNC_ENABLED", false),
		CredentialPath:   getEnv("GOOGLE_CREDENTIAL_PATH", "credentials.json"),
		SpreadsheetID:    getEnv("SPREADSHEET_ID", ""),
		SheetName:        getEnv("SHEET_NAME", "Licenses"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("配置项 %s 解析失败，使用默认值 %d", key, fallback)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("配置项 %s 解析失败，使用默认值 %v", key, fallback)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("配置项 %s 解析失败，使用默认值 %s", key, fallback)
	}
	return fallback
}
