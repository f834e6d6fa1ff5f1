package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"golfcam/internal/events"
)

// EventReplayer reads stored events.
type EventReplayer interface {
	Replay(ctx context.Context, start time.Time, fn func(events.Event)) error
}

// EventsHandler serves the stored event log.
type EventsHandler struct {
	replayer EventReplayer
}

func NewEventsHandler(replayer EventReplayer) *EventsHandler {
	return &EventsHandler{replayer: replayer}
}

// Replay returns stored events published since a time
// @Summary Replay events
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param since query string true "RFC3339 start time"
// @Param kind query string false "Only events of this kind"
// @Param limit query int false "Maximum events" default(500)
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /events/replay [get]
func (h *EventsHandler) Replay(c *gin.Context) {
	if h.replayer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "JetStream is not enabled"})
		return
	}
	since, err := time.Parse(time.RFC3339, c.Query("since"))
	if err != nil {
		badRequest(c, "since must be an RFC3339 time")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if err != nil || limit <= 0 {
		limit = 500
	}
	kind := c.Query("kind")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out := []events.Event{}
	hasMore := false
	err = h.replayer.Replay(ctx, since, func(e events.Event) {
		if kind != "" && e.Kind != kind {
			return
		}
		if len(out) >= limit {
			hasMore = true
			cancel()
			return
		}
		out = append(out, e)
	})
	if err != nil && !hasMore {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":   out,
		"count":    len(out),
		"has_more": hasMore,
	})
}
