package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"systemscheck/internal/store"
)

// StatusResponse 系统状态
type StatusResponse struct {
	Facilities        int              `json:"facilities"`
	Scorecards        int              `json:"scorecards"`
	VocabularyVersion string           `json:"vocabularyVersion"`
	LastImport        *store.ImportLog `json:"lastImport,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	facilities, err := h.store.ListFacilities(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	count, err := h.store.CountScorecards(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	vocab, _ := h.store.GetSetting(ctx, store.SettingVocabularyVersion)

	resp := StatusResponse{Facilities: len(facilities), Scorecards: count, VocabularyVersion: vocab}
	if logs, err := h.store.RecentImportLogs(ctx, 1); err == nil && len(logs) > 0 {
		resp.LastImport = &logs[0]
	}
	c.JSON(http.StatusOK, resp)
}

// ListFacilities 注册表中的有效机构
// GET /api/facilities
func (h *Handler) ListFacilities(c *gin.Context) {
	items, err := h.store.ListFacilities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListPeriods 已导入的年月及平均分
// GET /api/periods
func (h *Handler) ListPeriods(c *gin.Context) {
	items, err := h.store.ListPeriods(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListImportLogs 最近的导入记录
// GET /api/import-logs?limit=20
func (h *Handler) ListImportLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.store.RecentImportLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
