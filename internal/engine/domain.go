package engine

import (
	"regexp"
	"strings"
)

var hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?)*$`)

// NormalizeDomain 将任意形式的站点地址归一化为纯域名：
// 去掉协议、路径、端口和 www. 前缀，统一小写。
// 归一化后仍不是合法主机名时返回 invalid_input。
func NormalizeDomain(raw string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	if domain == "" {
		return "", invalidInput("域名不能为空")
	}

	// 去掉协议前缀
	if i := strings.Index(domain, "://"); i >= 0 {
		domain = domain[i+3:]
	}
	// 去掉路径和查询参数
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	// 去掉端口
	if i := strings.LastIndex(domain, ":"); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.TrimPrefix(domain, "www.")
	domain = strings.TrimSuffix(domain, ".")

	if domain == "" || len(domain) > 253 || !hostnamePattern.MatchString(domain) {
		return "", invalidInput("无效的域名: " + raw)
	}
	return domain, nil
}
