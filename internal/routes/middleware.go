package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger はリクエストごとに処理時間を計測し、1件のログを出力するミドルウェアです。
// ハンドラーが 404 / 422 / 500 を返した場合や panic した場合も必ず出力します。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		defer func() {
			elapsed := time.Since(start)
			logRequest(c, logger, method, path, elapsed)
		}()

		c.Next()
	}
}

// logRequest はログ出力中の panic を握りつぶし、リクエストに影響させません。
func logRequest(c *gin.Context, logger *slog.Logger, method, path string, elapsed time.Duration) {
	defer func() {
		_ = recover()
	}()

	duration := fmt.Sprintf("%.2f", elapsed.Seconds())
	logger.LogAttrs(c.Request.Context(), slog.LevelInfo,
		fmt.Sprintf("%s %s - Completed in %ss", method, path, duration),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", c.Writer.Status()),
		slog.String("duration", duration+"s"),
	)
}
