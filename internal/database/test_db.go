package database

import (
	"log"

	"license-activation-server/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitTestDB 打开共享缓存的内存数据库并迁移全部模型，供测试使用
func InitTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatal("测试数据库连接失败:", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.License{},
		&model.Product{},
		&model.ActivityLog{},
	); err != nil {
		log.Fatal("测试数据库迁移失败:", err)
	}
	DB = db
}

// CleanTestDB 关闭底层连接，释放内存数据库
func CleanTestDB() {
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
