// internal/rules/condition_test.go
package rules

import (
	"testing"

	"github.com/solatis/formkeeper/internal/types"
)

func inCondition(ot types.OptionType, negate bool, opts ...types.OptionID) *CompiledCondition {
	set := make(map[types.OptionID]struct{}, len(opts))
	for _, o := range opts {
		set[o] = struct{}{}
	}
	return &CompiledCondition{
		ID:            "c",
		Operator:      types.OperatorIn,
		Mode:          types.ModeAnd,
		Negate:        negate,
		OptionType:    ot,
		ParentOptions: set,
	}
}

func single(ids ...types.OptionID) ParentSelection {
	return ParentSelection{Kind: types.SelectionSingle, Selected: ids}
}

func multi(ids ...types.OptionID) ParentSelection {
	return ParentSelection{Kind: types.SelectionMulti, Selected: ids}
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name   string
		cond   *CompiledCondition
		parent ParentSelection
		want   ConditionResult
	}{
		// Single-select parents
		{
			name:   "single: selected option in set",
			cond:   inCondition("", false, "yes"),
			parent: single("yes"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "single: selected option not in set",
			cond:   inCondition("", false, "yes"),
			parent: single("no"),
			want:   ConditionResult{},
		},
		{
			name:   "single: no selection",
			cond:   inCondition("", false, "yes"),
			parent: single(),
			want:   ConditionResult{NoSelection: true},
		},
		{
			name:   "single: negated match",
			cond:   inCondition("", true, "yes"),
			parent: single("yes"),
			want:   ConditionResult{},
		},
		{
			name:   "single: negated non-match",
			cond:   inCondition("", true, "yes"),
			parent: single("no"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "single: negation skipped without selection",
			cond:   inCondition("", true, "yes"),
			parent: single(),
			want:   ConditionResult{NoSelection: true},
		},

		// Multi-select parents
		{
			name:   "multi: no selection",
			cond:   inCondition(types.OptionTypeAtLeastOne, false, "a"),
			parent: multi(),
			want:   ConditionResult{NoSelection: true},
		},
		{
			name:   "multi: negation skipped without selection",
			cond:   inCondition(types.OptionTypeAtLeastOne, true, "a"),
			parent: multi(),
			want:   ConditionResult{NoSelection: true},
		},
		{
			name:   "multi Single: exactly one selected, in set",
			cond:   inCondition(types.OptionTypeSingle, false, "a", "b"),
			parent: multi("a"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "multi Single: two selected, both in set",
			cond:   inCondition(types.OptionTypeSingle, false, "a", "b"),
			parent: multi("a", "b"),
			want:   ConditionResult{},
		},
		{
			name:   "multi Single: one selected, not in set",
			cond:   inCondition(types.OptionTypeSingle, false, "a"),
			parent: multi("c"),
			want:   ConditionResult{},
		},
		{
			name:   "multi Exact: all selected in set",
			cond:   inCondition(types.OptionTypeExact, false, "a", "b", "c"),
			parent: multi("a", "c"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "multi Exact: one selected outside set",
			cond:   inCondition(types.OptionTypeExact, false, "a", "b"),
			parent: multi("a", "c"),
			want:   ConditionResult{},
		},
		{
			name:   "multi AtLeastOne: overlap",
			cond:   inCondition(types.OptionTypeAtLeastOne, false, "b"),
			parent: multi("a", "b", "c"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "multi AtLeastOne: disjoint",
			cond:   inCondition(types.OptionTypeAtLeastOne, false, "x"),
			parent: multi("a", "b"),
			want:   ConditionResult{},
		},
		{
			name:   "multi default option type behaves as AtLeastOne",
			cond:   inCondition("", false, "b"),
			parent: multi("a", "b"),
			want:   ConditionResult{Satisfied: true},
		},
		{
			name:   "multi: negated disjoint",
			cond:   inCondition(types.OptionTypeAtLeastOne, true, "x"),
			parent: multi("a"),
			want:   ConditionResult{Satisfied: true},
		},

		// Free-text and missing parents
		{
			name:   "free-text parent never selects",
			cond:   inCondition("", false, "yes"),
			parent: ParentSelection{Kind: types.SelectionNone},
			want:   ConditionResult{NoSelection: true},
		},
		{
			name:   "free-text parent ignores negation",
			cond:   inCondition("", true, "yes"),
			parent: ParentSelection{Kind: types.SelectionNone},
			want:   ConditionResult{NoSelection: true},
		},

		// Non-IN operators
		{
			name:   "LENGTH on applicability path",
			cond:   &CompiledCondition{Operator: types.OperatorLength, Mode: types.ModeAnd, Value: "1,5"},
			parent: single("yes"),
			want:   ConditionResult{},
		},
		{
			name:   "REGEX negated on applicability path",
			cond:   &CompiledCondition{Operator: types.OperatorRegex, Mode: types.ModeAnd, Negate: true},
			parent: single("yes"),
			want:   ConditionResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCondition(tt.cond, tt.parent)
			if got != tt.want {
				t.Errorf("EvaluateCondition() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectionOf(t *testing.T) {
	radio := &types.Question{QuestionID: "r", DataType: types.DataTypeRadioButton}
	check := &types.Question{QuestionID: "c", DataType: types.DataTypeCheckbox}
	text := &types.Question{QuestionID: "t", DataType: types.DataTypeText}

	tests := []struct {
		name     string
		question *types.Question
		answers  types.Answers
		wantKind types.SelectionKind
		want     []types.OptionID
	}{
		{
			name:     "nil question",
			question: nil,
			answers:  types.NewAnswers(),
			wantKind: types.SelectionNone,
		},
		{
			name:     "unanswered single",
			question: radio,
			answers:  types.NewAnswers(),
			wantKind: types.SelectionSingle,
		},
		{
			name:     "single from value",
			question: radio,
			answers:  types.NewAnswers(types.Answer{QuestionID: "r", Value: " yes "}),
			wantKind: types.SelectionSingle,
			want:     []types.OptionID{"yes"},
		},
		{
			name:     "blank single value",
			question: radio,
			answers:  types.NewAnswers(types.Answer{QuestionID: "r", Value: "   "}),
			wantKind: types.SelectionSingle,
		},
		{
			name:     "single falls back to first flagged selection",
			question: radio,
			answers: types.NewAnswers(types.Answer{QuestionID: "r", Selections: []types.Selection{
				{OptionID: "no", IsSelected: false},
				{OptionID: "yes", IsSelected: true},
				{OptionID: "maybe", IsSelected: true},
			}}),
			wantKind: types.SelectionSingle,
			want:     []types.OptionID{"yes"},
		},
		{
			name:     "multi keeps flagged selections, de-duplicated",
			question: check,
			answers: types.NewAnswers(types.Answer{QuestionID: "c", Selections: []types.Selection{
				{OptionID: "a", IsSelected: true},
				{OptionID: "b", IsSelected: false},
				{OptionID: "c", IsSelected: true},
				{OptionID: "a", IsSelected: true},
			}}),
			wantKind: types.SelectionMulti,
			want:     []types.OptionID{"a", "c"},
		},
		{
			name:     "free text never selects",
			question: text,
			answers:  types.NewAnswers(types.Answer{QuestionID: "t", Value: "yes"}),
			wantKind: types.SelectionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectionOf(tt.question, tt.answers)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if len(got.Selected) != len(tt.want) {
				t.Fatalf("Selected = %v, want %v", got.Selected, tt.want)
			}
			for i := range tt.want {
				if got.Selected[i] != tt.want[i] {
					t.Errorf("Selected[%d] = %v, want %v", i, got.Selected[i], tt.want[i])
				}
			}
		})
	}
}
