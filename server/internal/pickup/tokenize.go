package pickup

import (
	"regexp"
	"strings"
)

var (
	digitRun = regexp.MustCompile(`[0-9]+`)
	// 完整的韩文音节区间（가..힣），不含字母 Jamo。
	hangulRun = regexp.MustCompile(`[가-힣]+`)
)

// lineTokens 是单行文本的切分结果。
type lineTokens struct {
	digits [3]int
	names  []string
}

// tokenizeLine 提取一行中的前三个孤立数字和全部韩文名字片段。
// 孤立数字指长度恰好为 1 的数字串，像 "180" 这样的批次编号不会被拆开。
// 孤立数字不足三个时返回 false，该行应被静默跳过。
func tokenizeLine(line string) (lineTokens, bool) {
	var tok lineTokens
	found := 0
	for _, run := range digitRun.FindAllString(line, -1) {
		if len(run) != 1 {
			continue
		}
		tok.digits[found] = int(run[0] - '0')
		found++
		if found == len(tok.digits) {
			break
		}
	}
	if found < len(tok.digits) {
		return lineTokens{}, false
	}
	tok.names = hangulRun.FindAllString(line, -1)
	return tok, true
}

// splitLines 按换行切分，并去掉 Windows 换行留下的 '\r'。
func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
