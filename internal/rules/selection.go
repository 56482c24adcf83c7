// internal/rules/selection.go
package rules

import (
	"strings"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Parent answer coercion for IN evaluation.
 *
 * Converts the parent question's raw answer into a ParentSelection whose
 * shape depends on the parent's data type:
 *   - SINGLE (Boolean, RadioButton, Dropdown, LookUpList): at most one id
 *   - MULTI (Checkbox): every option flagged IsSelected, de-duplicated
 *   - NONE (Text, TextArea, Email, Date): never a selection
 *
 * Single-select answers are read from Answer.Value. A client that posts a
 * single-select answer as Selections instead is accepted leniently: the
 * first flagged selection is used.
 *
 * A missing parent question or missing answer yields an empty selection,
 * which the condition evaluator reports as NoSelection.
 */

// ParentSelection is the coerced answer of a rule's parent question.
type ParentSelection struct {
	Kind     types.SelectionKind
	Selected []types.OptionID
}

// Empty reports whether nothing is selected.
func (p ParentSelection) Empty() bool {
	return len(p.Selected) == 0
}

// SelectionOf coerces the answer of question q.
// A nil question produces an empty SelectionNone selection.
func SelectionOf(q *types.Question, answers types.Answers) ParentSelection {
	if q == nil {
		return ParentSelection{Kind: types.SelectionNone}
	}

	kind := q.DataType.SelectionKind()
	sel := ParentSelection{Kind: kind}

	ans, ok := answers.Get(q.QuestionID)
	if !ok {
		return sel
	}

	switch kind {
	case types.SelectionSingle:
		if v := strings.TrimSpace(ans.Value); v != "" {
			sel.Selected = []types.OptionID{types.OptionID(v)}
			return sel
		}
		if picked := ans.SelectedOptions(); len(picked) > 0 {
			sel.Selected = picked[:1]
		}
	case types.SelectionMulti:
		sel.Selected = dedupe(ans.SelectedOptions())
	}

	return sel
}

// dedupe drops repeated option ids, keeping first occurrence order.
func dedupe(ids []types.OptionID) []types.OptionID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[types.OptionID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
