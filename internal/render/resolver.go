package render

import (
	"fmt"
	"regexp"
)

// Behavior is the evaluation applied to a tag node.
type Behavior int

const (
	BehaviorDefault Behavior = iota
	BehaviorFragment
	BehaviorNumberedFragment
)

func (b Behavior) String() string {
	switch b {
	case BehaviorFragment:
		return "fragment"
	case BehaviorNumberedFragment:
		return "numberedFragment"
	}
	return "default"
}

// Rule maps tag names matching Pattern to a Behavior.
type Rule struct {
	Pattern  *regexp.Regexp
	Behavior Behavior
}

// DefaultRules returns the built-in rules: all-digit tags are numbered
// fragments, the tag "f" is a plain fragment.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: regexp.MustCompile(`^[0-9]+$`), Behavior: BehaviorNumberedFragment},
		{Pattern: regexp.MustCompile(`^f$`), Behavior: BehaviorFragment},
	}
}

// TagResolver picks the behavior for a tag name from an ordered rule list.
// When several rules match, the last one in the list wins.
type TagResolver struct {
	rules []Rule
}

// NewTagResolver creates a resolver owning a copy of rules.
func NewTagResolver(rules ...Rule) *TagResolver {
	return &TagResolver{rules: append([]Rule(nil), rules...)}
}

// NewDefaultTagResolver creates a resolver seeded with DefaultRules.
func NewDefaultTagResolver() *TagResolver {
	return NewTagResolver(DefaultRules()...)
}

// Register appends a rule. Rules registered later take precedence.
func (r *TagResolver) Register(pattern string, b Behavior) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile tag pattern %q: %w", pattern, err)
	}
	r.rules = append(r.rules, Rule{Pattern: re, Behavior: b})
	return nil
}

// Rules returns a copy of the resolver's rules in evaluation order.
func (r *TagResolver) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Resolve returns the behavior for tag, or BehaviorDefault when nothing matches.
func (r *TagResolver) Resolve(tag string) Behavior {
	b := BehaviorDefault
	for _, rule := range r.rules {
		if rule.Pattern.MatchString(tag) {
			b = rule.Behavior
		}
	}
	return b
}
