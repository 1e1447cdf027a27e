package service

import (
	"fmt"
	"log"
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"
)

// ExpirySweeper 周期扫描即将到期和已到期的许可证。
// 到期状态翻转走引擎的 Validate 路径，保证和交互路径对"过期"的
// 判定完全一致。
type ExpirySweeper struct {
	eng         *engine.Engine
	interval    time.Duration
	warningDays int
	notified    map[string]time.Time // key -> 已提醒的到期日
	stop        chan struct{}
}

func NewExpirySweeper(eng *engine.Engine, interval time.Duration, warningDays int) *ExpirySweeper {
	return &ExpirySweeper{
		eng:         eng,
		interval:    interval,
		warningDays: warningDays,
		notified:    make(map[string]time.Time),
		stop:        make(chan struct{}),
	}
}

// Start 启动后台扫描协程
func (s *ExpirySweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				flipped, warned := s.RunOnce()
				if flipped > 0 || warned > 0 {
					log.Printf("过期扫描完成: %d 个已过期, %d 个即将过期", flipped, warned)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *ExpirySweeper) Stop() {
	close(s.stop)
}

// RunOnce 执行一轮扫描，返回翻转为过期的数量和新提醒的数量
func (s *ExpirySweeper) RunOnce() (flipped, warned int) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, s.warningDays)

	var licenses []model.License
	err := database.DB.
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", model.StatusActive, cutoff).
		Find(&licenses).Error
	if err != nil {
		log.Printf("过期扫描查询失败: %v", err)
		return 0, 0
	}

	for i := range licenses {
		lic := &licenses[i]
		if lic.IsExpiredAt(now) {
			// Validate 内部完成状态翻转和审计
			if _, err := s.eng.Validate(lic.Key, ""); err != nil {
				log.Printf("过期扫描处理 %s 失败: %v", lic.Key, err)
				continue
			}
			flipped++
			continue
		}

		// 同一个到期日只提醒一次
		if t, ok := s.notified[lic.Key]; ok && t.Equal(*lic.ExpiryDate) {
			continue
		}
		days := int(time.Until(*lic.ExpiryDate).Hours() / 24)
		detail := fmt.Sprintf("许可证将在 %d 天后过期", days)
		if err := LogActivity(lic.Key, "license_expiring", "", detail); err != nil {
			log.Printf("写入到期提醒失败: %v", err)
			continue
		}
		s.notified[lic.Key] = *lic.ExpiryDate
		warned++
	}
	return flipped, warned
}
