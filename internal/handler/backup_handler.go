package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/service"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type backupService interface {
	Export(ctx context.Context) (*models.Backup, error)
	Archive(ctx context.Context) (*models.BackupArchive, error)
	Download(ctx context.Context, token string) (*service.BackupDownload, error)
}

// BackupHandler exposes full-state snapshots.
type BackupHandler struct {
	service backupService
}

// NewBackupHandler constructs a BackupHandler.
func NewBackupHandler(svc backupService) *BackupHandler {
	return &BackupHandler{service: svc}
}

// Export godoc
// @Summary Export a full backup
// @Tags Backup
// @Produce json
// @Success 200 {object} map[string]models.Backup
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	backup, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"backup": backup})
}

// Archive godoc
// @Summary Archive a backup to storage
// @Description Queues a snapshot and returns a signed download link for it.
// @Tags Backup
// @Produce json
// @Success 202 {object} models.BackupArchive
// @Failure 503 {object} response.ErrorBody
// @Router /backup/archive [post]
func (h *BackupHandler) Archive(c *gin.Context) {
	archive, err := h.service.Archive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, archive)
}

// Download godoc
// @Summary Download an archived backup
// @Tags Backup
// @Produce json
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorBody
// @Router /backup/download/{token} [get]
func (h *BackupHandler) Download(c *gin.Context) {
	file, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/json", file.Filename, file.Data)
}
