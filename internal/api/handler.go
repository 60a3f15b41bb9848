// Package api 评分卡导入 HTTP 接口
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"systemscheck/internal/importer"
	"systemscheck/internal/logger"
	"systemscheck/internal/store"
)

// DefaultMaxUploadBytes 单个工作簿上传上限
const DefaultMaxUploadBytes = 20 << 20

// Handler API 处理器
type Handler struct {
	store          *store.Store
	importer       *importer.Coordinator
	validate       *validator.Validate
	maxUploadBytes int64
	log            *zerolog.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, imp *importer.Coordinator) *Handler {
	return &Handler{
		store:          st,
		importer:       imp,
		validate:       newValidator(),
		maxUploadBytes: DefaultMaxUploadBytes,
		log:            logger.Named("api"),
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/facilities", h.ListFacilities)
	router.GET("/periods", h.ListPeriods)
	router.GET("/import-logs", h.ListImportLogs)

	// 批量导入
	router.POST("/scorecards/validate", h.ValidateBatch)
	router.POST("/scorecards/import", h.ImportBatch)
	// 工作簿导入（multipart，dryRun=true 时仅校验）
	router.POST("/scorecards/workbooks", h.ImportWorkbooks)

	router.GET("/scorecards/:id", h.GetScorecard)
}
