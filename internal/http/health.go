package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

// TrackerCounter exposes the in-memory graph size.
type TrackerCounter interface {
	Counts() services.Counts
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Tracker *services.Counts  `json:"tracker,omitempty"`
}

type HealthController struct {
	store   Pinger
	tracker TrackerCounter
	version string
}

// NewHealthController accepts nil for either dependency; the matching check
// is then reported as not configured.
func NewHealthController(store Pinger, tracker TrackerCounter, version string) *HealthController {
	return &HealthController{store: store, tracker: tracker, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": "not configured", "tracker": "not configured"},
	}

	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			resp.Checks["database"] = "error: " + err.Error()
			resp.Status = "unhealthy"
		} else {
			resp.Checks["database"] = "ok"
		}
	}

	if h.tracker != nil {
		counts := h.tracker.Counts()
		resp.Tracker = &counts
		resp.Checks["tracker"] = "ok"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
