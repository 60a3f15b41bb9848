// Package parser 从评分卡工作簿中抽取结构化数据：识别各系统的 sheet、
// 元信息（机构名、月份、年份）、表头与数据行。
package parser

// DiscoveryState 启发式扫描的状态
type DiscoveryState int

const (
	StateSearching DiscoveryState = iota // 仍在扫描
	StateFound                           // 已找到
	StateFallback                        // 扫描结束未找到，使用默认值
)

func (s DiscoveryState) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Options 抽取参数
type Options struct {
	HeaderScanRows    int     // 表头扫描行数
	MetadataScanRows  int     // 概览 sheet 元信息扫描行数
	MonthScanRows     int     // 系统 sheet 月份扫描行数
	DefaultDataStart  int     // 无表头时数据起始行（0 起）
	DefaultSampleSize float64 // 样本数无法解析时的默认值
	BinaryMinPoints   float64 // 样本数为 "1" 时判为二元项所需的最低分值
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:    10,
		MetadataScanRows:  10,
		MonthScanRows:     5,
		DefaultDataStart:  2,
		DefaultSampleSize: 3,
		BinaryMinPoints:   5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = d.HeaderScanRows
	}
	if o.MetadataScanRows <= 0 {
		o.MetadataScanRows = d.MetadataScanRows
	}
	if o.MonthScanRows <= 0 {
		o.MonthScanRows = d.MonthScanRows
	}
	if o.DefaultDataStart <= 0 {
		o.DefaultDataStart = d.DefaultDataStart
	}
	if o.DefaultSampleSize <= 0 {
		o.DefaultSampleSize = d.DefaultSampleSize
	}
	if o.BinaryMinPoints <= 0 {
		o.BinaryMinPoints = d.BinaryMinPoints
	}
	return o
}
