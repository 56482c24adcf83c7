// internal/rules/condition.go
package rules

import (
	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Condition evaluation for the applicability path.
 *
 * Only IN takes part in applicability. LENGTH, REGEX and DATE are format
 * checks owned by internal/validate; reaching them here yields the
 * conservative {false, false}.
 *
 * IN semantics by parent selection kind:
 *   - SINGLE: selected option is a member of ParentOptions
 *   - MULTI: intersection of selected options with ParentOptions, read per
 *     OptionType (Single, Exact, AtLeastOne)
 *   - NONE: nothing can be selected, always NoSelection
 *
 * NoSelection: a parent without a selection is "not satisfied" and Negate is
 * NOT applied to it. A negated condition on an unanswered parent must not
 * make the dependent question applicable.
 */

// ConditionResult is the outcome of one condition.
type ConditionResult struct {
	Satisfied   bool
	NoSelection bool
}

// EvaluateCondition evaluates cond against the parent's coerced selection.
func EvaluateCondition(cond *CompiledCondition, parent ParentSelection) ConditionResult {
	if cond.Operator != types.OperatorIn {
		return ConditionResult{}
	}

	res := compareIn(cond, parent)
	if res.NoSelection {
		return res
	}

	res.Satisfied = res.Satisfied != cond.Negate
	return res
}

// compareIn applies IN before negation.
func compareIn(cond *CompiledCondition, parent ParentSelection) ConditionResult {
	switch parent.Kind {
	case types.SelectionSingle:
		if parent.Empty() {
			return ConditionResult{NoSelection: true}
		}
		_, ok := cond.ParentOptions[parent.Selected[0]]
		return ConditionResult{Satisfied: ok}

	case types.SelectionMulti:
		if parent.Empty() {
			return ConditionResult{NoSelection: true}
		}
		matched := intersectCount(parent.Selected, cond.ParentOptions)
		return ConditionResult{Satisfied: compareOptionType(cond.OptionType, matched, len(parent.Selected))}

	default:
		return ConditionResult{NoSelection: true}
	}
}

// compareOptionType interprets the intersection size for multi-select parents.
func compareOptionType(ot types.OptionType, matched, selected int) bool {
	switch ot {
	case types.OptionTypeSingle:
		return selected == 1 && matched == 1
	case types.OptionTypeExact:
		return matched == selected
	default:
		return matched > 0
	}
}

// intersectCount counts selected ids present in options.
// Selected ids are assumed de-duplicated (see SelectionOf).
func intersectCount(selected []types.OptionID, options map[types.OptionID]struct{}) int {
	n := 0
	for _, id := range selected {
		if _, ok := options[id]; ok {
			n++
		}
	}
	return n
}
