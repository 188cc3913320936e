package middleware

import (
	"time"

	"githubActivityWidget/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency_ms", latency),
			zap.String("ip", c.IP()),
		}
		if upstream := c.GetRespHeader("X-Upstream-Status"); upstream != "" {
			fields = append(fields, zap.String("upstream_status", upstream))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Lg.Info("http_request", fields...)
		return err
	}
}
