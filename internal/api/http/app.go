package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/line-menu-bot/internal/config"
)

// FiberConfig builds the fiber settings for the app. With trusted proxies
// configured, X-Forwarded-Proto and X-Forwarded-Host are honoured only from
// those peers; otherwise from any peer.
func FiberConfig(cfg config.AppConfig) fiber.Config {
	fc := fiber.Config{AppName: cfg.Name}
	if len(cfg.TrustedProxies) > 0 {
		fc.EnableTrustedProxyCheck = true
		fc.TrustedProxies = cfg.TrustedProxies
	}
	return fc
}
