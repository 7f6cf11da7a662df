// Package defensive decides whether an event counts as a defensive action
// for pressing metrics.
package defensive

import "github.com/okian/ppda/internal/domain/model"

// DefaultFoulSubEvents is the foul family that always counts as a defensive action.
func DefaultFoulSubEvents() []string {
	return []string{model.SubFoul, model.SubHandFoul, model.SubLateCardFoul, model.SubViolentFoul}
}

// Classifier decides whether a single event is a defensive action.
// Callers apply team and zone gating before asking.
type Classifier interface {
	IsDefensiveAction(e model.Event) bool
}

// Option applies a configuration option to the RuleClassifier.
type Option func(*RuleClassifier)

// WithFoulSubEvents replaces the foul family. An empty list keeps the default.
func WithFoulSubEvents(subEvents []string) Option {
	return func(c *RuleClassifier) {
		if len(subEvents) == 0 {
			return
		}
		c.fouls = make(map[string]struct{}, len(subEvents))
		for _, s := range subEvents {
			c.fouls[s] = struct{}{}
		}
	}
}

// RuleClassifier ORs four independent rules: a foul sub-event, an
// interception, a won ground defending duel, or a sliding tackle.
type RuleClassifier struct {
	fouls map[string]struct{}
}

// NewRuleClassifier creates a classifier with the default foul family.
func NewRuleClassifier(opts ...Option) *RuleClassifier {
	c := &RuleClassifier{}
	WithFoulSubEvents(DefaultFoulSubEvents())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsDefensiveAction implements Classifier.
func (c *RuleClassifier) IsDefensiveAction(e model.Event) bool {
	return c.isFoul(e) || isInterception(e) || isWonGroundDuel(e) || isSlidingTackle(e)
}

// Reasons lists which rules matched, in rule order.
func (c *RuleClassifier) Reasons(e model.Event) []string {
	var out []string
	if c.isFoul(e) {
		out = append(out, "foul")
	}
	if isInterception(e) {
		out = append(out, "interception")
	}
	if isWonGroundDuel(e) {
		out = append(out, "won_ground_duel")
	}
	if isSlidingTackle(e) {
		out = append(out, "sliding_tackle")
	}
	return out
}

func (c *RuleClassifier) isFoul(e model.Event) bool {
	_, ok := c.fouls[e.SubEventType]
	return ok
}

func isInterception(e model.Event) bool {
	return e.HasTag(model.TagInterception)
}

func isWonGroundDuel(e model.Event) bool {
	return e.SubEventType == model.SubGroundDefendingDuel && e.HasTag(model.TagWon)
}

func isSlidingTackle(e model.Event) bool {
	return e.HasTag(model.TagSlidingTackle)
}
