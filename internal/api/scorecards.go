package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"systemscheck/internal/importer"
	"systemscheck/internal/model"
	"systemscheck/internal/store"
)

// BatchRequest 批量导入请求
type BatchRequest struct {
	Rows []model.BatchRow `json:"rows" validate:"required,min=1,max=10000"`
}

func (h *Handler) bindBatch(c *gin.Context) (*BatchRequest, bool) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return nil, false
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return nil, false
	}
	return &req, true
}

// ValidateBatch 仅校验批量行，不写入
// POST /api/scorecards/validate
func (h *Handler) ValidateBatch(c *gin.Context) {
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}
	report, err := h.importer.ValidateRows(c.Request.Context(), req.Rows)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ImportBatch 校验并提交批量行
// POST /api/scorecards/import
func (h *Handler) ImportBatch(c *gin.Context) {
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}
	res, err := h.importer.CommitRows(c.Request.Context(), req.Rows)
	if err != nil {
		h.fail(c, err, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportWorkbooks 上传一个或多个评分卡工作簿（字段 file）；
// facilityName/month/year 表单字段覆盖表内数据
// POST /api/scorecards/workbooks?dryRun=true
func (h *Handler) ImportWorkbooks(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	var overrides model.WorkbookOverrides
	if err := c.ShouldBind(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid overrides: " + err.Error()})
		return
	}
	if err := h.validate.Struct(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	inputs := make([]model.WorkbookInput, 0, len(files))
	for _, fh := range files {
		data, err := h.readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		inputs = append(inputs, model.WorkbookInput{Name: fh.Filename, Data: data, Overrides: overrides})
	}

	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dryRun", c.DefaultPostForm("dryRun", "false")))
	if dryRun {
		report, err := h.importer.ValidateWorkbooks(c.Request.Context(), inputs)
		if err != nil {
			h.fail(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	res, err := h.importer.CommitWorkbooks(c.Request.Context(), inputs)
	if err != nil {
		h.fail(c, err, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("file %s exceeds upload limit of %d bytes", fh.Filename, h.maxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
}

// GetScorecard 读取已提交的评分卡
// GET /api/scorecards/:id
func (h *Handler) GetScorecard(c *gin.Context) {
	card, err := h.store.GetScorecard(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrScorecardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "scorecard not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// fail 批次级失败：快照加载失败返回 503，提交失败返回 500 并附带逐行结果
func (h *Handler) fail(c *gin.Context, err error, res *model.ImportBatchResult) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("import request failed")
	status := http.StatusInternalServerError
	if errors.Is(err, importer.ErrRegistryLoad) || errors.Is(err, importer.ErrCatalogLoad) || errors.Is(err, importer.ErrKeysLoad) {
		status = http.StatusServiceUnavailable
	}
	body := gin.H{"error": err.Error()}
	if res != nil {
		body["result"] = res
	}
	c.JSON(status, body)
}
