package transition

import (
	"github.com/provalon/quality-engine/internal/domain/status"
)

// State is a node in a transition graph. The quality graph uses the 7
// QualityStatus codes; document lifecycles (NCR) use their own small state
// sets over the same rule machinery.
type State string

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// NCR document lifecycle states
const (
	NCRDraft  State = "draft"
	NCROpen   State = "open"
	NCRClosed State = "closed"
)

// Rule declares that a transition between two states is permitted and which
// evidence it requires. Absence of a rule means the transition is forbidden.
type Rule struct {
	From               State  `json:"from_status"`
	To                 State  `json:"to_status"`
	RequiresInspection bool   `json:"requires_inspection"`
	RequiresApproval   bool   `json:"requires_approval"`
	RequiresReason     bool   `json:"requires_reason"`
	Description        string `json:"description"`
}

type ruleKey struct {
	from State
	to   State
}

// RuleSet is an immutable lookup table of permitted transitions.
// It is built once at startup and safe for concurrent reads.
type RuleSet struct {
	rules map[ruleKey]Rule
	order []ruleKey
}

// NewRuleSet builds a rule set from the given rules. Duplicate (from, to)
// pairs panic: the table is configuration and a duplicate is a programming error.
func NewRuleSet(rules []Rule) *RuleSet {
	rs := &RuleSet{rules: make(map[ruleKey]Rule, len(rules))}
	for _, r := range rules {
		key := ruleKey{from: r.From, to: r.To}
		if _, exists := rs.rules[key]; exists {
			panic("duplicate transition rule: " + string(r.From) + " -> " + string(r.To))
		}
		rs.rules[key] = r
		rs.order = append(rs.order, key)
	}
	return rs
}

// RuleFor returns the rule for the (from, to) pair, if one exists.
func (rs *RuleSet) RuleFor(from, to State) (Rule, bool) {
	r, ok := rs.rules[ruleKey{from: from, to: to}]
	return r, ok
}

// ValidTransitionsFrom returns all permitted outgoing transitions from the
// given state in declaration order. Unknown states have no outgoing edges and
// yield an empty slice, never an error.
func (rs *RuleSet) ValidTransitionsFrom(from State) []Rule {
	out := []Rule{}
	for _, key := range rs.order {
		if key.from == from {
			out = append(out, rs.rules[key])
		}
	}
	return out
}

// QualityRules returns the transition table for the 7-state quality graph.
// Every edge requires a reason; every edge not listed is disallowed.
// The HOLD -> RELEASED / RELEASED -> HOLD asymmetry (inspection required one
// way but not the other) is intentional regulatory configuration.
func QualityRules() *RuleSet {
	q := func(s status.QualityStatus) State { return State(s) }
	return NewRuleSet([]Rule{
		{q(status.StatusPending), q(status.StatusPassed), true, false, true, "Inspection passed"},
		{q(status.StatusPending), q(status.StatusFailed), true, false, true, "Inspection failed"},
		{q(status.StatusPending), q(status.StatusHold), false, false, true, "Place on hold pending investigation"},
		{q(status.StatusPending), q(status.StatusQuarantined), false, true, true, "Quarantine before inspection"},

		{q(status.StatusPassed), q(status.StatusHold), false, false, true, "Hold passed material"},
		{q(status.StatusPassed), q(status.StatusQuarantined), false, true, true, "Quarantine passed material"},
		{q(status.StatusPassed), q(status.StatusFailed), false, true, true, "Overturn a pass verdict"},

		{q(status.StatusFailed), q(status.StatusHold), false, false, true, "Hold failed material for disposition"},
		{q(status.StatusFailed), q(status.StatusQuarantined), false, false, true, "Quarantine failed material"},

		{q(status.StatusHold), q(status.StatusPassed), true, true, true, "Release hold after re-inspection"},
		{q(status.StatusHold), q(status.StatusFailed), true, true, true, "Fail held material after re-inspection"},
		{q(status.StatusHold), q(status.StatusReleased), true, true, true, "Release held material for shipment"},
		{q(status.StatusHold), q(status.StatusCondApproved), true, true, true, "Conditionally approve held material"},
		{q(status.StatusHold), q(status.StatusQuarantined), false, false, true, "Escalate hold to quarantine"},

		{q(status.StatusQuarantined), q(status.StatusHold), false, true, true, "Downgrade quarantine to hold"},
		{q(status.StatusQuarantined), q(status.StatusReleased), true, true, true, "Release quarantined material"},
		{q(status.StatusQuarantined), q(status.StatusFailed), true, true, true, "Fail quarantined material"},

		{q(status.StatusCondApproved), q(status.StatusPassed), true, true, true, "Promote conditional approval to pass"},
		{q(status.StatusCondApproved), q(status.StatusFailed), true, true, true, "Revoke conditional approval"},
		{q(status.StatusCondApproved), q(status.StatusHold), false, false, true, "Hold conditionally approved material"},

		{q(status.StatusReleased), q(status.StatusHold), false, false, true, "Recall released material to hold"},
		{q(status.StatusReleased), q(status.StatusQuarantined), false, true, true, "Quarantine released material"},
	})
}

// NCRLifecycleRules returns the 3-state document lifecycle used by
// non-conformance reports: draft -> open -> closed. Closing an NCR needs a
// managerial sign-off and a justification.
func NCRLifecycleRules() *RuleSet {
	return NewRuleSet([]Rule{
		{NCRDraft, NCROpen, false, false, false, "Open the report for investigation"},
		{NCROpen, NCRClosed, false, true, true, "Close the report with disposition"},
	})
}
