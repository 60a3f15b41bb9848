// Package importer 导入编排：批次开始时构建只读快照（机构注册表、审核标准目录、已存在键），
// 并行处理各行/工作簿，汇总结果，提交路径上把通过校验的评分卡作为一个事务交给持久层。
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"systemscheck/internal/logger"
	"systemscheck/internal/matching"
	"systemscheck/internal/model"
	"systemscheck/internal/parser"
	"systemscheck/internal/validation"
)

// 批次级致命错误
var (
	ErrRegistryLoad = errors.New("facility registry load failed")
	ErrCatalogLoad  = errors.New("criteria catalog load failed")
	ErrKeysLoad     = errors.New("existing scorecard keys load failed")
	ErrCommit       = errors.New("scorecard commit failed")
)

// FacilityProvider 机构注册表提供方（只读）
type FacilityProvider interface {
	ListFacilities(ctx context.Context) ([]model.CanonicalFacility, error)
}

// CatalogProvider 审核标准目录提供方（只读）
type CatalogProvider interface {
	ListCriteria(ctx context.Context) ([]model.CriteriaItem, error)
}

// ScorecardStore 评分卡持久层：已存在键 + 全有或全无的事务写入
type ScorecardStore interface {
	ExistingKeys(ctx context.Context) ([]model.ScorecardKey, error)
	CommitScorecards(ctx context.Context, batchID string, cards []*model.ParsedScorecard) error
}

// ImportLogRecorder 导入日志（可选）
type ImportLogRecorder interface {
	CreateImportLog(ctx context.Context, batchID, source, mode string, totalRows int) (int64, error)
	FinishImportLog(ctx context.Context, id int64, successRows, failedRows int, status, errorMessage string) error
}

// Deps 外部协作方
type Deps struct {
	Facilities FacilityProvider
	Catalog    CatalogProvider
	Scorecards ScorecardStore
	ImportLog  ImportLogRecorder
}

// Options 编排参数
type Options struct {
	Workers       int
	Resolver      matching.ResolverOptions
	Vocabulary    matching.Vocabulary
	ItemThreshold float64
	Validation    validation.Options
	Parser        parser.Options
	Logger        *zerolog.Logger
	OnProgress    func(ProgressEvent)
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		Workers:       4,
		Resolver:      matching.DefaultResolverOptions(),
		Vocabulary:    matching.DefaultVocabulary,
		ItemThreshold: matching.DefaultItemThreshold,
		Validation:    validation.DefaultOptions(),
		Parser:        parser.DefaultOptions(),
	}
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"` // start/validated/committed/done/error
	BatchID   string    `json:"batchId"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinator 导入协调器（ImportOrchestrator）
type Coordinator struct {
	deps      Deps
	opts      Options
	extractor *parser.Extractor
	log       *zerolog.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(deps Deps, opts Options) (*Coordinator, error) {
	if deps.Facilities == nil || deps.Scorecards == nil {
		return nil, fmt.Errorf("importer: facility provider and scorecard store are required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Vocabulary.Version == "" {
		opts.Vocabulary = matching.DefaultVocabulary
	}
	if opts.Resolver.Threshold <= 0 {
		opts.Resolver = matching.DefaultResolverOptions()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("importer")
	}
	return &Coordinator{
		deps:      deps,
		opts:      opts,
		extractor: parser.NewExtractor(opts.Parser),
		log:       log,
	}, nil
}

// snapshot 批次快照：开始时构建一次，之后只读，可在各 worker 间共享
type snapshot struct {
	batchID   string
	started   time.Time
	registry  *matching.FacilityRegistry
	catalog   *matching.CriteriaCatalog
	matcher   *matching.ItemMatcher
	validator *validation.Validator
}

// loadSnapshot 加载注册表、已存在键，needCatalog 时加载审核标准目录。任一失败即整批终止。
func (c *Coordinator) loadSnapshot(ctx context.Context, needCatalog bool) (*snapshot, error) {
	snap := &snapshot{batchID: uuid.NewString(), started: time.Now()}

	facilities, err := c.deps.Facilities.ListFacilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistryLoad, err)
	}
	snap.registry = matching.NewFacilityRegistry(facilities, c.opts.Vocabulary)

	if needCatalog {
		if c.deps.Catalog == nil {
			return nil, fmt.Errorf("%w: no catalog provider configured", ErrCatalogLoad)
		}
		items, err := c.deps.Catalog.ListCriteria(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		}
		catalog, err := matching.NewCriteriaCatalog(items)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
		}
		snap.catalog = catalog
		snap.matcher = matching.NewItemMatcher(catalog, c.opts.ItemThreshold)
	}

	keys, err := c.deps.Scorecards.ExistingKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeysLoad, err)
	}

	resolver := matching.NewFacilityResolver(snap.registry, c.opts.Resolver)
	snap.validator = validation.New(resolver, model.NewKeySet(keys), c.opts.Validation)

	c.log.Debug().
		Str("batch_id", snap.batchID).
		Int("facilities", snap.registry.Len()).
		Str("vocabulary", snap.registry.VocabularyVersion()).
		Int("existing_keys", len(keys)).
		Msg("batch snapshot loaded")
	return snap, nil
}

func (c *Coordinator) sendProgress(evt ProgressEvent) {
	if c.opts.OnProgress == nil {
		return
	}
	evt.Timestamp = time.Now()
	c.opts.OnProgress(evt)
}
