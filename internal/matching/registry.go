package matching

import (
	"sort"

	"systemscheck/internal/model"
)

type registryEntry struct {
	facility model.CanonicalFacility
	norm     string
	core     string
	tokens   TokenSet
}

// FacilityRegistry 机构注册表快照：每批次构建一次，之后只读，可并发使用
type FacilityRegistry struct {
	entries []registryEntry
	byID    map[int64]int
	vocab   Vocabulary
	namer   *CoreNamer
}

// NewFacilityRegistry 构建注册表快照，按 id 排序以保证结果可复现
func NewFacilityRegistry(facilities []model.CanonicalFacility, vocab Vocabulary) *FacilityRegistry {
	sorted := make([]model.CanonicalFacility, len(facilities))
	copy(sorted, facilities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	r := &FacilityRegistry{
		entries: make([]registryEntry, 0, len(sorted)),
		byID:    make(map[int64]int, len(sorted)),
		vocab:   vocab,
		namer:   vocab.Compile(),
	}
	for _, f := range sorted {
		core := r.namer.CoreName(f.Name)
		tokenSource := core
		if tokenSource == "" {
			tokenSource = Normalize(f.Name)
		}
		r.byID[f.ID] = len(r.entries)
		r.entries = append(r.entries, registryEntry{
			facility: f,
			norm:     Normalize(f.Name),
			core:     core,
			tokens:   NewTokenSet(tokenSource),
		})
	}
	return r
}

// Len 机构数量
func (r *FacilityRegistry) Len() int { return len(r.entries) }

// VocabularyVersion 构建快照所用词表版本
func (r *FacilityRegistry) VocabularyVersion() string { return r.vocab.Version }

// Lookup 按 id 查找
func (r *FacilityRegistry) Lookup(id int64) (model.CanonicalFacility, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return model.CanonicalFacility{}, false
	}
	return r.entries[idx].facility, true
}
