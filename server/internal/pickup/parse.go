package pickup

import (
	"strings"

	"pickup-ledger/server/internal/model"
)

// trialsPerLine 是一行记录对应的抽数（一次十连）。
const trialsPerLine = 10

// UnresolvedName 记录一个没能映射到学生的名字片段。
type UnresolvedName struct {
	Line  int    `json:"line"`
	Token string `json:"token"`
}

// Report 是一次解析的完整结果。
// Sessions 与 Rules 一一对应；行号从 1 开始，空白行不计入 SkippedLines。
type Report struct {
	Sessions     []model.PullSession `json:"sessions"`
	Rules        []Rule              `json:"rules"`
	SkippedLines []int               `json:"skipped_lines"`
	Unresolved   []UnresolvedName    `json:"unresolved"`
}

// Parser 把用户粘贴的抽卡记录解析为逐批次结果。
// Parser 无内部可变状态，可并发使用。
type Parser struct {
	matcher Matcher
}

// NewParser 使用给定的名字匹配策略创建 Parser。
func NewParser(m Matcher) *Parser {
	return &Parser{matcher: m}
}

// Parse 解析 raw，按 known 索引识别三星学生。任何畸形输入都只会让结果变少，不会报错。
func Parse(raw string, known []model.StudentName) []model.PullSession {
	return ParseWithReport(raw, known).Sessions
}

// ParseWithReport 与 Parse 相同，额外返回跳过的行与未识别的名字。
func ParseWithReport(raw string, known []model.StudentName) Report {
	return NewParser(DefaultMatcher(NewIndex(known))).Parse(raw)
}

// Parse 逐行处理输入：每成功解析一行，累计抽数加 10。
func (p *Parser) Parse(raw string) Report {
	report := Report{
		Sessions:     []model.PullSession{},
		Rules:        []Rule{},
		SkippedLines: []int{},
		Unresolved:   []UnresolvedName{},
	}

	trial := 0
	for i, line := range splitLines(raw) {
		lineNo := i + 1
		tok, ok := tokenizeLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				report.SkippedLines = append(report.SkippedLines, lineNo)
			}
			continue
		}

		order, rule := ResolveOrder(tok.digits, len(tok.names))
		counts := order.Assign(tok.digits)

		names := tok.names
		if counts.Tier3 < len(names) {
			names = names[:counts.Tier3]
		}
		ids := make([]string, 0, len(names))
		for _, name := range names {
			id, ok := p.matcher.Match(name)
			if !ok {
				report.Unresolved = append(report.Unresolved, UnresolvedName{Line: lineNo, Token: name})
				continue
			}
			ids = append(ids, id)
		}

		trial += trialsPerLine
		report.Sessions = append(report.Sessions, model.PullSession{
			Trial:           trial,
			Tier1Count:      counts.Tier1,
			Tier2Count:      counts.Tier2,
			Tier3Count:      counts.Tier3,
			Tier3StudentIDs: ids,
		})
		report.Rules = append(report.Rules, rule)
	}

	return report
}
