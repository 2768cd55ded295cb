package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/worklog-app/worklog-backend/internal/api/http"
	"github.com/worklog-app/worklog-backend/internal/auth"
	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
	"github.com/worklog-app/worklog-backend/internal/timelogs/export"
)

var errArchiveDisabled = common.Unavailable("Export archive storage is not configured")

// exportDownload handles GET /timelogs/export?format=csv|json&startDate=&endDate=.
func (h *Handler) exportDownload(c *gin.Context) {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	body, err := h.render(c, f, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Filename(h.now().In(h.loc))))
	c.Data(http.StatusOK, f.ContentType(), body)
}

// exportArchive uploads the rendered export to object storage and returns a download link.
func (h *Handler) exportArchive(c *gin.Context) {
	if h.archiver == nil {
		httpapi.WriteError(c, h.log, errArchiveDisabled)
		return
	}

	var req archiveReq
	if err := httpapi.BindJSON(c, &req); err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	f, err := export.ParseFormat(req.Format)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	body, err := h.render(c, f, req.StartDate, req.EndDate)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}

	res, err := h.archiver.Archive(c.Request.Context(), auth.UserID(c), f, body)
	if err != nil {
		httpapi.WriteError(c, h.log, err)
		return
	}
	h.log.Info(c.Request.Context(), "export archived", "user_id", auth.UserID(c), "key", res.Key, "bytes", len(body))
	c.JSON(http.StatusOK, res)
}

func (h *Handler) render(c *gin.Context, f export.Format, startDate, endDate string) ([]byte, error) {
	from, to := domain.ParseRange(startDate, endDate, h.loc)
	logs, err := h.svc.List(c.Request.Context(), domain.Filter{UserID: auth.UserID(c), From: from, To: to})
	if err != nil {
		return nil, err
	}
	return export.Render(f, logs, h.loc)
}
