package importer

import (
	"systemscheck/internal/config"
	"systemscheck/internal/matching"
	"systemscheck/internal/parser"
	"systemscheck/internal/validation"
)

// OptionsFromConfig 由应用配置构建编排参数
func OptionsFromConfig(cfg *config.AppConfig) Options {
	opts := DefaultOptions()
	opts.Workers = cfg.Import.Workers
	opts.ItemThreshold = cfg.Matching.ItemThreshold
	opts.Resolver = matching.ResolverOptions{
		Threshold:       cfg.Matching.FacilityThreshold,
		TypoSimilarity:  cfg.Matching.TypoSimilarity,
		StrictAmbiguity: cfg.Matching.StrictAmbiguity,
		AmbiguityMargin: cfg.Matching.AmbiguityMargin,
	}
	v := validation.DefaultOptions()
	v.MinYear = cfg.Import.MinYear
	v.TotalTolerance = cfg.Import.TotalTolerance
	opts.Validation = v
	p := parser.DefaultOptions()
	p.DefaultSampleSize = cfg.Import.DefaultSampleSize
	opts.Parser = p
	return opts
}
