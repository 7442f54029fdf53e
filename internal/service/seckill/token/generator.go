// internal/service/seckill/token/generator.go
package token

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator 根据商品ID和进程内盐值派生秒杀口令。
// 派生是纯函数：同一个ID在进程生命周期内永远得到同一个口令；
// 摘要不可逆，拿到口令推不出盐值，也伪造不了其它商品的口令
type Generator struct {
	salt string
}

// NewGenerator 创建口令生成器，盐值来自进程配置，此后不可变
func NewGenerator(salt string) *Generator {
	return &Generator{salt: salt}
}

// Derive 对 "<seckillID>/<salt>" 做摘要并编码为十六进制
func (g *Generator) Derive(seckillID int64) string {
	base := fmt.Sprintf("%d/%s", seckillID, g.salt)
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

// Verify 大小写不敏感地校验调用方提供的口令，空口令直接判否
func (g *Generator) Verify(seckillID int64, supplied string) bool {
	if supplied == "" {
		return false
	}
	return strings.EqualFold(supplied, g.Derive(seckillID))
}
