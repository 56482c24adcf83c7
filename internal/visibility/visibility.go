// Package visibility applies applicability outcomes to an answer snapshot.
//
// A question that stops being visible loses its answer. Clearing an answer
// can in turn hide questions that depend on it, so Reconcile repeats until
// no answer changes.
package visibility

import (
	"github.com/solatis/formkeeper/internal/rules"
	"github.com/solatis/formkeeper/internal/types"
)

// Result is the reconciled state of a question set.
type Result struct {
	// Visible maps every question of the set to its final visibility.
	Visible map[types.QuestionID]bool
	// Cleared lists questions whose answer was removed, in clearing order.
	Cleared []types.QuestionID
	// Answers is the reconciled snapshot. The caller's snapshot is untouched.
	Answers types.Answers
	// Outcomes holds the final engine outcome per question, in set order.
	Outcomes []rules.Outcome
	// Passes counts evaluation passes, including the final stable one.
	Passes int
}

// IsVisible reports whether id ended visible.
func (r Result) IsVisible(id types.QuestionID) bool {
	return r.Visible[id]
}

// Reconcile evaluates every question in set order, clears answers of
// invisible questions and repeats until a pass clears nothing. Each clearing
// pass removes at least one answer, so at most len(questions)+1 passes run.
func Reconcile(engine *rules.Engine, answers types.Answers) Result {
	set := engine.Set()
	res := Result{
		Visible: make(map[types.QuestionID]bool, set.Len()),
		Answers: answers.Clone(),
	}

	for res.Passes = 1; res.Passes <= set.Len()+1; res.Passes++ {
		res.Outcomes = engine.EvaluateAll(res.Answers)

		changed := false
		for _, o := range res.Outcomes {
			res.Visible[o.QuestionID] = o.Visible
			if o.Visible {
				continue
			}
			if _, ok := res.Answers[o.QuestionID]; ok {
				delete(res.Answers, o.QuestionID)
				res.Cleared = append(res.Cleared, o.QuestionID)
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return res
}
