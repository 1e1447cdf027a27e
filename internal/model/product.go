package model

import "gorm.io/gorm"

// Product 被授权的产品（插件/主题），供客户端查询版本与下载地址
type Product struct {
	gorm.Model
	Slug           string `json:"slug" gorm:"uniqueIndex;not null"`
	Name           string `json:"name"`
	CurrentVersion string `json:"current_version"`
	DownloadURL    string `json:"download_url"`
}
