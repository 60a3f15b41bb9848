package matching

import (
	"fmt"
	"sort"

	"systemscheck/internal/model"
)

type catalogEntry struct {
	item   model.CriteriaItem
	tokens TokenSet
}

// CriteriaCatalog 审核标准目录快照：每批次构建一次，之后只读
type CriteriaCatalog struct {
	systems map[int][]catalogEntry
	count   int
}

// NewCriteriaCatalog 按系统分组并按条目编号排序
func NewCriteriaCatalog(items []model.CriteriaItem) (*CriteriaCatalog, error) {
	c := &CriteriaCatalog{systems: make(map[int][]catalogEntry)}
	seen := make(map[[2]int]struct{}, len(items))
	for _, it := range items {
		if it.SystemNumber < 1 || it.SystemNumber > model.BatchSystemCount {
			return nil, fmt.Errorf("criteria item %d: invalid system number %d", it.ItemNumber, it.SystemNumber)
		}
		key := [2]int{it.SystemNumber, it.ItemNumber}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate criteria item %d in system %d", it.ItemNumber, it.SystemNumber)
		}
		seen[key] = struct{}{}
		if it.InputType == "" {
			it.InputType = model.InputSample
		}
		c.systems[it.SystemNumber] = append(c.systems[it.SystemNumber], catalogEntry{
			item:   it,
			tokens: NewTokenSet(Normalize(it.Text)),
		})
		c.count++
	}
	for n := range c.systems {
		entries := c.systems[n]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].item.ItemNumber < entries[j].item.ItemNumber })
	}
	return c, nil
}

// Len 条目总数
func (c *CriteriaCatalog) Len() int { return c.count }

// Items 返回某系统的有序条目
func (c *CriteriaCatalog) Items(systemNumber int) []model.CriteriaItem {
	entries := c.systems[systemNumber]
	out := make([]model.CriteriaItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.item)
	}
	return out
}
