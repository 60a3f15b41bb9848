// Package matching 负责自由文本的规范化、相似度计算，以及机构名称与审核条目的模糊匹配。
package matching

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize 规范化文本：小写、去除非字母数字字符、压缩空白、去首尾空白。
// 输出只含 [a-z0-9 ]，因此幂等。
func Normalize(text string) string {
	text = strings.ToLower(norm.NFKD.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Vocabulary 机构核心名词表，需与所匹配的注册表同步版本
type Vocabulary struct {
	Version       string
	Abbreviations map[string]string
	Boilerplate   []string
	TypeSuffixes  []string
}

// DefaultVocabulary 默认词表
var DefaultVocabulary = Vocabulary{
	Version: "2024.1",
	Abbreviations: map[string]string{
		"mt":  "mount",
		"st":  "saint",
		"cda": "coeur dalene",
	},
	Boilerplate: []string{
		"transitional care",
		"health",
		"rehabilitation",
		"and",
		"of",
		"cascadia",
		"center",
		"snf",
		"alf",
		"ilf",
	},
	TypeSuffixes: []string{"snf", "alf", "ilf"},
}

// CoreNamer 由词表编译得到的核心名提取器：后缀正则与样板短语只准备一次，之后只读，可并发使用
type CoreNamer struct {
	abbreviations map[string]string
	boilerplate   []string // 已规范化，长短语在前
	suffix        *regexp.Regexp
}

// Compile 预编译词表
func (v Vocabulary) Compile() *CoreNamer {
	c := &CoreNamer{
		abbreviations: v.Abbreviations,
		boilerplate:   make([]string, 0, len(v.Boilerplate)),
	}
	for _, p := range v.Boilerplate {
		if p = Normalize(p); p != "" {
			c.boilerplate = append(c.boilerplate, p)
		}
	}
	sort.SliceStable(c.boilerplate, func(i, j int) bool { return len(c.boilerplate[i]) > len(c.boilerplate[j]) })

	if len(v.TypeSuffixes) > 0 {
		quoted := make([]string, 0, len(v.TypeSuffixes))
		for _, s := range v.TypeSuffixes {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(s)))
		}
		c.suffix = regexp.MustCompile(`\s*-\s*(` + strings.Join(quoted, "|") + `)\s*$`)
	}
	return c
}

var defaultCoreNamer = sync.OnceValue(DefaultVocabulary.Compile)

// CoreName 用默认词表提取机构核心名
func CoreName(facilityName string) string {
	return defaultCoreNamer().CoreName(facilityName)
}

// CoreName 提取机构核心名：去掉类型后缀、展开缩写、移除样板词
func (c *CoreNamer) CoreName(facilityName string) string {
	name := strings.ToLower(strings.TrimSpace(facilityName))
	if c.suffix != nil {
		name = c.suffix.ReplaceAllString(name, "")
	}

	tokens := strings.Fields(Normalize(name))
	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if full, ok := c.abbreviations[tok]; ok {
			expanded = append(expanded, full)
			continue
		}
		expanded = append(expanded, tok)
	}

	padded := " " + strings.Join(expanded, " ") + " "
	for _, phrase := range c.boilerplate {
		needle := " " + phrase + " "
		for strings.Contains(padded, needle) {
			padded = strings.ReplaceAll(padded, needle, " ")
		}
	}
	return strings.Join(strings.Fields(padded), " ")
}
