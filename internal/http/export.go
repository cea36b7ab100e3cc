package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/exporters"
)

// ExportController streams the full tracker state as a JSON document.
type ExportController struct {
	source  exporters.SnapshotSource
	auditor exporters.ExportAuditor
}

func NewExportController(source exporters.SnapshotSource, auditor exporters.ExportAuditor) *ExportController {
	return &ExportController{source: source, auditor: auditor}
}

// Export handles GET /api/export. Password hashes never leave the server.
func (ec *ExportController) Export(c *gin.Context) {
	snap := ec.source.Snapshot()
	at := time.Now().UTC()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="snapshot-%s.json"`, at.Format("20060102T150405Z")))
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)

	err := exporters.WriteDocument(c.Writer, exporters.NewDocument(snap, at))
	if ec.auditor != nil {
		result := exporters.ResultFor("http", snap)
		ec.auditor.LogExport(auth.GetUsername(c), result.Destination, result.Counts(), err)
	}
	if err != nil {
		_ = c.Error(err)
	}
}
