package http

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"

	"pushgate/internal/queue"
)

func healthHandler(q queue.Queue) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":     "ok",
			"queue_size": q.Len(c.Request().Context()),
			"timestamp":  time.Now().Unix(),
		})
	}
}
