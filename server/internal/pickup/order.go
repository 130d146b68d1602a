package pickup

// Order 表示一行中三个数字的书写顺序。
type Order int

const (
	// Ascending: 一星、二星、三星。
	Ascending Order = iota
	// Descending: 三星、二星、一星。
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Rule 标识顺序判定命中的规则，便于审计与统计。
type Rule string

const (
	RuleLeadingNameCount  Rule = "leading-name-count"
	RuleTrailingNameCount Rule = "trailing-name-count"
	RuleEdgeComparison    Rule = "edge-comparison"
)

// Counts 是按星级归位后的数量。
type Counts struct {
	Tier1 int
	Tier2 int
	Tier3 int
}

type orderCase struct {
	rule  Rule
	match func(d [3]int, names int) bool
	order func(d [3]int) Order
}

// orderTable 按顺序求值，第一条命中的规则生效。
// 最后一条是兜底启发式：名字数量与两端都对不上时，比较两端数字大小。
var orderTable = []orderCase{
	{
		rule:  RuleLeadingNameCount,
		match: func(d [3]int, names int) bool { return names == d[0] },
		order: func([3]int) Order { return Descending },
	},
	{
		rule:  RuleTrailingNameCount,
		match: func(d [3]int, names int) bool { return names == d[2] },
		order: func([3]int) Order { return Ascending },
	},
	{
		rule:  RuleEdgeComparison,
		match: func([3]int, int) bool { return true },
		order: func(d [3]int) Order {
			if d[0] > d[2] {
				return Descending
			}
			return Ascending
		},
	},
}

// ResolveOrder 根据名字数量判断三个数字的书写顺序。
func ResolveOrder(d [3]int, names int) (Order, Rule) {
	for _, c := range orderTable {
		if c.match(d, names) {
			return c.order(d), c.rule
		}
	}
	// orderTable 的最后一条总会命中。
	return Ascending, RuleEdgeComparison
}

// Assign 把文本顺序的三个数字归位到对应星级。
func (o Order) Assign(d [3]int) Counts {
	if o == Descending {
		return Counts{Tier1: d[2], Tier2: d[1], Tier3: d[0]}
	}
	return Counts{Tier1: d[0], Tier2: d[1], Tier3: d[2]}
}
