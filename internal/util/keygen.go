package util

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const keyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateLicenseKey 生成 XXXX-XXXX-XXXX-XXXX-XXXX 格式的许可证密钥
func GenerateLicenseKey() string {
	parts := make([]string, 5)
	for i := range parts {
		var sb strings.Builder
		for j := 0; j < 4; j++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyCharset))))
			if err != nil {
				panic(err)
			}
			sb.WriteByte(keyCharset[n.Int64()])
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, "-")
}

// GenerateAPIKey 生成客户端接口的共享 API 密钥
func GenerateAPIKey() string {
	return uuid.NewString()
}
