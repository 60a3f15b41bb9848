package store

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"systemscheck/internal/model"
)

// Seed 种子数据文件（TOML）
//
//	vocabulary_version = "2024.1"
//
//	[[facility]]
//	id = 1
//	name = "Colville Health and Rehabilitation of Cascadia"
//
//	[[criteria]]
//	system = 1
//	item = 1
//	text = "..."
//	max_points = 20
//	sample_size = 3
type Seed struct {
	VocabularyVersion string                    `toml:"vocabulary_version"`
	Facilities        []model.CanonicalFacility `toml:"facility"`
	Criteria          []model.CriteriaItem      `toml:"criteria"`
}

// LoadSeed 读取种子文件
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// ApplySeed 写入种子数据：机构按 id 覆盖；提供了审核标准时整体替换目录
func (s *Store) ApplySeed(ctx context.Context, seed *Seed, source string) error {
	if err := s.UpsertFacilities(ctx, seed.Facilities); err != nil {
		return err
	}
	if len(seed.Criteria) > 0 {
		if err := s.ReplaceCriteria(ctx, seed.Criteria); err != nil {
			return err
		}
	}
	if seed.VocabularyVersion != "" {
		if err := s.SetSetting(ctx, SettingVocabularyVersion, seed.VocabularyVersion); err != nil {
			return err
		}
	}
	if source != "" {
		if err := s.SetSetting(ctx, SettingSeedSource, source); err != nil {
			return err
		}
	}
	return nil
}
