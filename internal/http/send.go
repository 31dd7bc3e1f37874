package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"pushgate/internal/metrics"
	"pushgate/internal/model"
	"pushgate/internal/queue"
)

type sendReq struct {
	Content     string `json:"content"`
	UMO         string `json:"umo"`
	MessageType string `json:"message_type"` // "text" | "image"
	MessageID   string `json:"message_id"`
	CallbackURL string `json:"callback_url"`
}

func sendHandler(q queue.Queue, defaultUMO string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sendReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Bad Request",
				"details": "invalid JSON body",
			})
		}

		// whitespace-only content counts as empty: nothing to deliver
		if strings.TrimSpace(req.Content) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Bad Request",
				"details": "missing required field: content",
			})
		}

		// request umo wins, config default is the fallback
		umo := req.UMO
		if umo == "" {
			umo = defaultUMO
		}
		if umo == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Bad Request",
				"details": "no recipient: set umo in the request or default_umo in config",
			})
		}

		// lenient parse: unknown message_type degrades to text
		kind, _ := model.ParseKind(req.MessageType)

		id := req.MessageID
		if id == "" {
			id = uuid.NewString()
		}

		env := model.Envelope{
			ID:          id,
			Content:     req.Content,
			UMO:         umo,
			Kind:        kind,
			CallbackURL: req.CallbackURL,
		}

		if err := q.Enqueue(c.Request().Context(), env); err != nil {
			if errors.Is(err, queue.ErrFull) {
				metrics.MessagesTotal.WithLabelValues("rejected", kind.String()).Inc()
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error":   "Service Unavailable",
					"details": "queue is full, retry later",
				})
			}

			log.Errorf("enqueue failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error":   "Internal Server Error",
				"details": "enqueue failed",
			})
		}

		depth := q.Len(c.Request().Context())
		metrics.MessagesTotal.WithLabelValues("queued", kind.String()).Inc()
		metrics.QueueDepth.Set(float64(depth))

		return c.JSON(http.StatusOK, map[string]any{
			"status":     "queued",
			"message_id": id,
			"queue_size": depth,
		})
	}
}
