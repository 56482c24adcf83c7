package rules

import (
	"github.com/solatis/formkeeper/internal/types"
)

// Outcome is the applicability decision for one question.
type Outcome struct {
	QuestionID types.QuestionID `json:"QuestionId"`
	// Conditional is true when the question has at least one parent rule.
	Conditional        bool              `json:"Conditional"`
	Applicable         bool              `json:"Applicable"`
	Visible            bool              `json:"Visible"`
	FailingConditionID types.ConditionID `json:"FailingConditionId,omitempty"`
	Message            string            `json:"Message,omitempty"`
	Rules              []RuleOutcome     `json:"Rules,omitempty"`
}

// Engine answers applicability questions for one compiled question set.
// Safe for concurrent use.
type Engine struct {
	set *CompiledSet
}

// NewEngine creates an engine over a compiled set.
func NewEngine(set *CompiledSet) *Engine {
	return &Engine{set: set}
}

// Set returns the compiled question set.
func (e *Engine) Set() *CompiledSet {
	return e.set
}

// IsApplicable reports whether question id is conditionally applicable.
func (e *Engine) IsApplicable(id types.QuestionID, answers types.Answers) bool {
	return e.Evaluate(id, answers).Applicable
}

// Evaluate decides applicability and visibility of question id.
//
// Parent rules are already in Sequence order. Each is evaluated, bucketed by
// rule Mode and combined. When the question is not applicable the first
// unsatisfied condition in sequence order is reported.
func (e *Engine) Evaluate(id types.QuestionID, answers types.Answers) Outcome {
	out := Outcome{QuestionID: id}

	q, ok := e.set.Question(id)
	if !ok {
		return out
	}

	if len(q.Parent) == 0 {
		out.Visible = true
		return out
	}
	out.Conditional = true

	buckets := make(map[types.Mode][]bool, 2)
	out.Rules = make([]RuleOutcome, 0, len(q.Parent))
	for _, rule := range q.Parent {
		ro := EvaluateRule(e.set, rule, answers)
		buckets[rule.Mode] = append(buckets[rule.Mode], ro.Satisfied)
		out.Rules = append(out.Rules, ro)
	}

	out.Applicable = Combine(buckets[types.ModeAnd], buckets[types.ModeOr])
	out.Visible = out.Applicable

	if !out.Applicable {
		for _, ro := range out.Rules {
			if c, found := ro.FirstUnsatisfied(); found {
				out.FailingConditionID = c.ConditionID
				out.Message = c.Description
				break
			}
		}
	}

	return out
}

// EvaluateAll evaluates every question in set order.
func (e *Engine) EvaluateAll(answers types.Answers) []Outcome {
	outcomes := make([]Outcome, 0, e.set.Len())
	for _, q := range e.set.Questions() {
		outcomes = append(outcomes, e.Evaluate(q.ID(), answers))
	}
	return outcomes
}
