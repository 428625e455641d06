package corrections

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

type compiledRule interface {
	Apply(input string) (output string, changed bool)
}

type literalRule struct {
	from string
	to   string
}

func (r literalRule) Apply(input string) (string, bool) {
	if !strings.Contains(input, r.from) {
		return input, false
	}
	return strings.ReplaceAll(input, r.from, r.to), true
}

// Table applies literal corrections in a fixed order: longest key first,
// ties broken by byte-wise key order. Each rule runs once per Apply.
type Table struct {
	rules []compiledRule
}

// Compile orders the entries of table. Empty keys are dropped.
func Compile(table map[string]string) *Table {
	keys := lo.Filter(lo.Keys(table), func(key string, _ int) bool { return key != "" })
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]compiledRule, 0, len(keys))
	for _, key := range keys {
		rules = append(rules, literalRule{from: key, to: table[key]})
	}
	return &Table{rules: rules}
}

// Apply rewrites text. An empty table returns text unchanged.
func (t *Table) Apply(text string) string {
	if t == nil {
		return text
	}
	result := text
	for _, rule := range t.rules {
		if next, changed := rule.Apply(result); changed {
			result = next
		}
	}
	return result
}

// Len reports the number of active rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}
