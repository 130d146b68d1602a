package pickup

import (
	"strings"
	"unicode/utf8"

	"pickup-ledger/server/internal/model"
)

// Matcher 把一个名字片段映射为学生 ID。
type Matcher interface {
	Match(token string) (studentID string, ok bool)
}

// MatcherFunc 让普通函数满足 Matcher。
type MatcherFunc func(token string) (string, bool)

func (f MatcherFunc) Match(token string) (string, bool) { return f(token) }

// Chain 依次尝试每个 Matcher，返回第一个命中的结果。
type Chain []Matcher

func (c Chain) Match(token string) (string, bool) {
	for _, m := range c {
		if id, ok := m.Match(token); ok {
			return id, true
		}
	}
	return "", false
}

type indexEntry struct {
	name      string
	base      string
	qualifier string
	// 名字不带括号时没有限定部分，变体前缀匹配永远不会命中它。
	hasQualifier bool
	studentID    string
}

// Index 是一次解析使用的学生名字索引，构建后只读。
type Index struct {
	entries []indexEntry
	exact   map[string]string
}

// NewIndex 按传入顺序建立索引；同名条目以先出现的为准。
func NewIndex(students []model.StudentName) *Index {
	ix := &Index{
		entries: make([]indexEntry, 0, len(students)),
		exact:   make(map[string]string, len(students)),
	}
	for _, s := range students {
		base, qualifier, ok := splitVariant(s.Name)
		ix.entries = append(ix.entries, indexEntry{
			name:         s.Name,
			base:         base,
			qualifier:    qualifier,
			hasQualifier: ok,
			studentID:    s.StudentID,
		})
		if _, exists := ix.exact[s.Name]; !exists {
			ix.exact[s.Name] = s.StudentID
		}
	}
	return ix
}

// Len 返回索引条目数。
func (ix *Index) Len() int { return len(ix.entries) }

// splitVariant 把 "하루나(새해)" 拆成 base "하루나" 与 qualifier "새해"。
func splitVariant(name string) (base, qualifier string, ok bool) {
	open := strings.IndexByte(name, '(')
	if open < 0 {
		return name, "", false
	}
	base = name[:open]
	qualifier = name[open+1:]
	if end := strings.IndexByte(qualifier, ')'); end >= 0 {
		qualifier = qualifier[:end]
	}
	return base, qualifier, true
}

// ExactMatcher 按名字原文查找。
func ExactMatcher(ix *Index) Matcher {
	return MatcherFunc(func(token string) (string, bool) {
		id, ok := ix.exact[token]
		return id, ok
	})
}

// VariantPrefixMatcher 处理 "새루나" -> "하루나(새해)" 这类简写：
// 首字取自变体限定，其余部分是本名的一段。
// 按索引顺序返回第一个 base 包含 tail 且 qualifier 包含 head 的条目。
func VariantPrefixMatcher(ix *Index) Matcher {
	return MatcherFunc(func(token string) (string, bool) {
		if token == "" {
			return "", false
		}
		_, size := utf8.DecodeRuneInString(token)
		head, tail := token[:size], token[size:]
		for _, e := range ix.entries {
			if !e.hasQualifier {
				continue
			}
			if strings.Contains(e.base, tail) && strings.Contains(e.qualifier, head) {
				return e.studentID, true
			}
		}
		return "", false
	})
}

// DefaultMatcher 是先精确匹配、再变体前缀匹配的组合。
func DefaultMatcher(ix *Index) Matcher {
	return Chain{ExactMatcher(ix), VariantPrefixMatcher(ix)}
}
