package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// validateDSN 启动前校验 POSTGRES_DSN，URI 与 key=value 两种写法都接受。
// 解析交给 pgx，错误信息里的密码已被脱敏。
func validateDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return errors.New("POSTGRES_DSN 为空")
	}
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("解析 POSTGRES_DSN 失败: %w", err)
	}
	if cfg.Host == "" {
		return errors.New("POSTGRES_DSN 缺少 host")
	}
	return nil
}
