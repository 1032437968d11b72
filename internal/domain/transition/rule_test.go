package transition

import (
	"testing"

	"github.com/provalon/quality-engine/internal/domain/status"
)

func TestQualityRules_OutgoingEdges(t *testing.T) {
	rules := QualityRules()

	tests := []struct {
		from State
		want []State
	}{
		{State(status.StatusPending), []State{"PASSED", "FAILED", "HOLD", "QUARANTINED"}},
		{State(status.StatusPassed), []State{"HOLD", "QUARANTINED", "FAILED"}},
		{State(status.StatusFailed), []State{"HOLD", "QUARANTINED"}},
		{State(status.StatusHold), []State{"PASSED", "FAILED", "RELEASED", "COND_APPROVED", "QUARANTINED"}},
		{State(status.StatusQuarantined), []State{"HOLD", "RELEASED", "FAILED"}},
		{State(status.StatusCondApproved), []State{"PASSED", "FAILED", "HOLD"}},
		{State(status.StatusReleased), []State{"HOLD", "QUARANTINED"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got := rules.ValidTransitionsFrom(tt.from)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidTransitionsFrom(%s) returned %d rules, want %d", tt.from, len(got), len(tt.want))
			}
			for i, rule := range got {
				if rule.To != tt.want[i] {
					t.Errorf("ValidTransitionsFrom(%s)[%d].To = %s, want %s", tt.from, i, rule.To, tt.want[i])
				}
				if rule.From != tt.from {
					t.Errorf("ValidTransitionsFrom(%s)[%d].From = %s", tt.from, i, rule.From)
				}
			}
		})
	}
}

func TestQualityRules_RequirementFlags(t *testing.T) {
	rules := QualityRules()

	tests := []struct {
		from, to                     State
		inspection, approval, reason bool
	}{
		{"PENDING", "PASSED", true, false, true},
		{"PENDING", "FAILED", true, false, true},
		{"PENDING", "HOLD", false, false, true},
		{"PENDING", "QUARANTINED", false, true, true},
		{"PASSED", "HOLD", false, false, true},
		{"PASSED", "QUARANTINED", false, true, true},
		{"PASSED", "FAILED", false, true, true},
		{"FAILED", "HOLD", false, false, true},
		{"FAILED", "QUARANTINED", false, false, true},
		{"HOLD", "PASSED", true, true, true},
		{"HOLD", "FAILED", true, true, true},
		{"HOLD", "RELEASED", true, true, true},
		{"HOLD", "COND_APPROVED", true, true, true},
		{"HOLD", "QUARANTINED", false, false, true},
		{"QUARANTINED", "HOLD", false, true, true},
		{"QUARANTINED", "RELEASED", true, true, true},
		{"QUARANTINED", "FAILED", true, true, true},
		{"COND_APPROVED", "PASSED", true, true, true},
		{"COND_APPROVED", "FAILED", true, true, true},
		{"COND_APPROVED", "HOLD", false, false, true},
		{"RELEASED", "HOLD", false, false, true},
		{"RELEASED", "QUARANTINED", false, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			rule, ok := rules.RuleFor(tt.from, tt.to)
			if !ok {
				t.Fatalf("RuleFor(%s, %s) not found", tt.from, tt.to)
			}
			if rule.RequiresInspection != tt.inspection {
				t.Errorf("RequiresInspection = %v, want %v", rule.RequiresInspection, tt.inspection)
			}
			if rule.RequiresApproval != tt.approval {
				t.Errorf("RequiresApproval = %v, want %v", rule.RequiresApproval, tt.approval)
			}
			if rule.RequiresReason != tt.reason {
				t.Errorf("RequiresReason = %v, want %v", rule.RequiresReason, tt.reason)
			}
		})
	}

	// 22 edges total; anything else is implicitly disallowed.
	total := 0
	for _, meta := range status.ListStatusTypes() {
		total += len(rules.ValidTransitionsFrom(State(meta.Code)))
	}
	if total != len(tests) {
		t.Errorf("quality graph has %d edges, want %d", total, len(tests))
	}
}

func TestQualityRules_DisallowedEdges(t *testing.T) {
	rules := QualityRules()

	disallowed := []struct{ from, to State }{
		{"FAILED", "RELEASED"},
		{"FAILED", "PASSED"},
		{"PENDING", "RELEASED"},
		{"PENDING", "COND_APPROVED"},
		{"PASSED", "RELEASED"},
		{"RELEASED", "PASSED"},
		{"CLOSED", "PASSED"}, // unknown from
	}

	for _, tt := range disallowed {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if _, ok := rules.RuleFor(tt.from, tt.to); ok {
				t.Errorf("RuleFor(%s, %s) should not exist", tt.from, tt.to)
			}
		})
	}
}

func TestRuleSet_UnknownFromYieldsEmptyList(t *testing.T) {
	rules := QualityRules()

	got := rules.ValidTransitionsFrom(State("SHIPPED"))
	if got == nil {
		t.Fatal("ValidTransitionsFrom should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("ValidTransitionsFrom(unknown) returned %d rules, want 0", len(got))
	}
}

func TestNewRuleSet_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRuleSet should panic on a duplicate (from, to) pair")
		}
	}()

	NewRuleSet([]Rule{
		{From: "A", To: "B"},
		{From: "A", To: "B"},
	})
}

func TestNCRLifecycleRules(t *testing.T) {
	rules := NCRLifecycleRules()

	open, ok := rules.RuleFor(NCRDraft, NCROpen)
	if !ok {
		t.Fatal("draft -> open must be permitted")
	}
	if open.RequiresApproval || open.RequiresInspection {
		t.Error("draft -> open should not require approval or inspection")
	}

	closeRule, ok := rules.RuleFor(NCROpen, NCRClosed)
	if !ok {
		t.Fatal("open -> closed must be permitted")
	}
	if !closeRule.RequiresApproval || !closeRule.RequiresReason {
		t.Error("open -> closed must require approval and a reason")
	}

	if _, ok := rules.RuleFor(NCRDraft, NCRClosed); ok {
		t.Error("draft -> closed must not be permitted")
	}
	if len(rules.ValidTransitionsFrom(NCRClosed)) != 0 {
		t.Error("closed is terminal and must have no outgoing edges")
	}
}
