package solver

import (
	"fmt"
	"strings"
)

// Rules is a set of pruning rules.
type Rules uint8

// Pruning rules, applied in declaration order.
const (
	// RuleWalls removes devices whose outputs can only run into walls.
	RuleWalls Rules = 1 << iota

	// RuleEmitters keeps only devices that accept the beam in front of an
	// emitter that must carry a signal.
	RuleEmitters

	// RuleReceivers keeps only devices that can feed a receiver that must
	// see a signal.
	RuleReceivers

	// RuleRows discards row assignments with facing gates or useless
	// splitters.
	RuleRows

	// AllRules enables every pruning rule.
	AllRules = RuleWalls | RuleEmitters | RuleReceivers | RuleRows
)

var ruleNames = []struct {
	rule Rules
	name string
}{
	{RuleWalls, "walls"},
	{RuleEmitters, "emitters"},
	{RuleReceivers, "receivers"},
	{RuleRows, "rows"},
}

// ParseRules converts rule names to a rule set.
func ParseRules(names []string) (Rules, error) {
	var rs Rules
	for _, n := range names {
		r, ok := lookupRule(strings.ToLower(strings.TrimSpace(n)))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRule, n)
		}
		rs |= r
	}
	return rs, nil
}

func lookupRule(name string) (Rules, bool) {
	for _, rn := range ruleNames {
		if rn.name == name {
			return rn.rule, true
		}
	}
	return 0, false
}

// Has reports whether every rule in o is in r.
func (r Rules) Has(o Rules) bool {
	return r&o == o
}

// String lists the rule names joined by commas.
func (r Rules) String() string {
	var names []string
	for _, rn := range ruleNames {
		if r.Has(rn.rule) {
			names = append(names, rn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
