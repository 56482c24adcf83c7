// internal/rules/evaluate.go
package rules

import (
	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Rule evaluation.
 *
 * Evaluates one CompiledRule against an answer snapshot. Only IN conditions
 * take part; format conditions on a parent rule are ignored here and left to
 * internal/validate.
 *
 * Evaluation flow:
 *   1. Coerce the parent answer once per rule (SelectionOf)
 *   2. Evaluate every IN condition, recording a ConditionTrace
 *   3. Bucket results by condition Mode (AND / OR)
 *   4. Combine the buckets
 *
 * No short-circuit: every condition is evaluated so the trace is complete and
 * the failing condition can be reported. Evaluation cost is bounded by the
 * question set size, which is small.
 */

// ConditionTrace records how one condition evaluated.
type ConditionTrace struct {
	ConditionID types.ConditionID `json:"ConditionId"`
	Mode        types.Mode        `json:"Mode"`
	Satisfied   bool              `json:"Satisfied"`
	NoSelection bool              `json:"NoSelection,omitempty"`
	Description string            `json:"Description,omitempty"`
}

// RuleOutcome is the result of one rule.
type RuleOutcome struct {
	RuleID           types.RuleID     `json:"RuleId"`
	ParentQuestionID types.QuestionID `json:"ParentQuestionId"`
	Mode             types.Mode       `json:"Mode"`
	Satisfied        bool             `json:"Satisfied"`
	Conditions       []ConditionTrace `json:"Conditions"`
}

// FirstUnsatisfied returns the first condition trace that did not hold.
func (r RuleOutcome) FirstUnsatisfied() (ConditionTrace, bool) {
	for _, c := range r.Conditions {
		if !c.Satisfied {
			return c, true
		}
	}
	return ConditionTrace{}, false
}

// EvaluateRule evaluates rule's IN conditions against answers.
// A rule without a parent, or without IN conditions, is not satisfied.
func EvaluateRule(set *CompiledSet, rule *CompiledRule, answers types.Answers) RuleOutcome {
	out := RuleOutcome{
		RuleID:           rule.ID,
		ParentQuestionID: rule.ParentQuestionID,
		Mode:             rule.Mode,
	}
	if !rule.HasParent() {
		return out
	}

	var parent *types.Question
	if pq, ok := set.Question(rule.ParentQuestionID); ok {
		parent = &pq.Question
	}
	sel := SelectionOf(parent, answers)

	buckets := make(map[types.Mode][]bool, 2)
	for i := range rule.Conditions {
		cond := &rule.Conditions[i]
		if cond.Operator != types.OperatorIn {
			continue
		}
		res := EvaluateCondition(cond, sel)
		buckets[cond.Mode] = append(buckets[cond.Mode], res.Satisfied)
		out.Conditions = append(out.Conditions, ConditionTrace{
			ConditionID: cond.ID,
			Mode:        cond.Mode,
			Satisfied:   res.Satisfied,
			NoSelection: res.NoSelection,
			Description: cond.Description,
		})
	}

	out.Satisfied = Combine(buckets[types.ModeAnd], buckets[types.ModeOr])
	return out
}
