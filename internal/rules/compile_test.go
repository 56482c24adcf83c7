// internal/rules/compile_test.go
package rules

import (
	"errors"
	"reflect"
	"testing"

	"github.com/solatis/formkeeper/internal/types"
)

func parentOf(id types.QuestionID) *types.QuestionID {
	return &id
}

func inRule(parent types.QuestionID, mode types.Mode, seq int, opts ...types.OptionID) types.Rule {
	return types.Rule{
		ParentQuestionID: parentOf(parent),
		Mode:             mode,
		Sequence:         seq,
		Conditions: []types.Condition{
			{Operator: types.OperatorIn, Mode: types.ModeAnd, ParentOptions: opts},
		},
	}
}

// marriageSet is the fixture most tests evaluate against.
func marriageSet() *types.QuestionSet {
	return &types.QuestionSet{
		QuestionSetID: "4d3a7c1e-2f57-4a53-9e1b-0b5f2d6c9a10",
		Version:       3,
		Questions: []types.Question{
			{
				QuestionID: "q-married",
				DataType:   types.DataTypeRadioButton,
				Mandatory:  true,
				Options:    []types.Option{{OptionID: "yes"}, {OptionID: "no"}},
			},
			{
				QuestionID: "q-spouse",
				DataType:   types.DataTypeText,
				Mandatory:  true,
				Rules: []types.Rule{{
					RuleID:           "r-spouse",
					ParentQuestionID: parentOf("q-married"),
					Mode:             types.ModeAnd,
					Sequence:         1,
					Conditions: []types.Condition{{
						ConditionID:   "c-spouse",
						Operator:      types.OperatorIn,
						Mode:          types.ModeAnd,
						ParentOptions: []types.OptionID{"yes"},
						Description:   "Only asked when married",
					}},
				}},
			},
			{
				QuestionID: "q-benefits",
				DataType:   types.DataTypeCheckbox,
				Options:    []types.Option{{OptionID: "a"}, {OptionID: "b"}, {OptionID: "c"}},
			},
			{
				QuestionID: "q-benefit-detail",
				DataType:   types.DataTypeTextArea,
				Rules: []types.Rule{{
					ParentQuestionID: parentOf("q-benefits"),
					Mode:             types.ModeAnd,
					Sequence:         1,
					Conditions: []types.Condition{{
						Operator:      types.OperatorIn,
						Mode:          types.ModeAnd,
						ParentOptions: []types.OptionID{"a", "b"},
						OptionType:    types.OptionTypeExact,
					}},
				}},
			},
			{
				QuestionID: "q-dob",
				DataType:   types.DataTypeDate,
				Mandatory:  true,
				Rules: []types.Rule{{
					Mode:     types.ModeAnd,
					Sequence: 1,
					Conditions: []types.Condition{{
						Operator: types.OperatorDate,
						Mode:     types.ModeAnd,
						Value:    "MISSINGDATEPART,PASTDATE",
					}},
				}},
			},
		},
	}
}

func TestCompile_IndexesQuestions(t *testing.T) {
	compiled, err := Compile(marriageSet())
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if compiled.Len() != 5 {
		t.Fatalf("Len() = %v, want 5", compiled.Len())
	}
	if compiled.Version != 3 {
		t.Errorf("Version = %v, want 3", compiled.Version)
	}

	q, ok := compiled.Question("q-spouse")
	if !ok {
		t.Fatalf("Question(q-spouse) not found")
	}
	if q.Index != 1 {
		t.Errorf("Index = %v, want 1", q.Index)
	}
	if len(q.Parent) != 1 {
		t.Fatalf("len(Parent) = %v, want 1", len(q.Parent))
	}
	if q.Parent[0].ParentQuestionID != "q-married" {
		t.Errorf("ParentQuestionID = %v, want q-married", q.Parent[0].ParentQuestionID)
	}
	if _, ok := q.Parent[0].Conditions[0].ParentOptions["yes"]; !ok {
		t.Errorf("ParentOptions missing %q", "yes")
	}

	dob, _ := compiled.Question("q-dob")
	if len(dob.Parent) != 0 {
		t.Errorf("len(dob.Parent) = %v, want 0", len(dob.Parent))
	}
	if got := len(dob.ConditionsFor(types.OperatorDate)); got != 1 {
		t.Errorf("len(ConditionsFor(DATE)) = %v, want 1", got)
	}
	if got := len(dob.ConditionsFor(types.OperatorRegex)); got != 0 {
		t.Errorf("len(ConditionsFor(REGEX)) = %v, want 0", got)
	}
}

func TestCompile_KeepsExplicitIDs(t *testing.T) {
	compiled := MustCompile(marriageSet())
	q, _ := compiled.Question("q-spouse")

	if q.Parent[0].ID != "r-spouse" {
		t.Errorf("rule ID = %v, want r-spouse", q.Parent[0].ID)
	}
	if q.Parent[0].Conditions[0].ID != "c-spouse" {
		t.Errorf("condition ID = %v, want c-spouse", q.Parent[0].Conditions[0].ID)
	}
}

func TestCompile_DerivesStableIDs(t *testing.T) {
	a := MustCompile(marriageSet())
	b := MustCompile(marriageSet())

	qa, _ := a.Question("q-benefit-detail")
	qb, _ := b.Question("q-benefit-detail")

	if qa.Rules[0].ID == "" {
		t.Fatal("derived rule ID is empty")
	}
	if qa.Rules[0].ID != qb.Rules[0].ID {
		t.Errorf("rule ID = %v, want %v", qa.Rules[0].ID, qb.Rules[0].ID)
	}
	if qa.Rules[0].Conditions[0].ID != qb.Rules[0].Conditions[0].ID {
		t.Errorf("condition ID = %v, want %v", qa.Rules[0].Conditions[0].ID, qb.Rules[0].Conditions[0].ID)
	}
	if want := types.DeriveRuleID("q-benefit-detail", 0); qa.Rules[0].ID != want {
		t.Errorf("rule ID = %v, want %v", qa.Rules[0].ID, want)
	}
}

func TestCompile_SortsRulesBySequenceStable(t *testing.T) {
	set := &types.QuestionSet{
		Questions: []types.Question{
			{QuestionID: "p", DataType: types.DataTypeRadioButton},
			{
				QuestionID: "d",
				DataType:   types.DataTypeText,
				Rules: []types.Rule{
					{RuleID: "third", ParentQuestionID: parentOf("p"), Mode: types.ModeOr, Sequence: 5,
						Conditions: []types.Condition{{Operator: types.OperatorIn, Mode: types.ModeAnd, ParentOptions: []types.OptionID{"x"}}}},
					{RuleID: "first", ParentQuestionID: parentOf("p"), Mode: types.ModeOr, Sequence: 1,
						Conditions: []types.Condition{{Operator: types.OperatorIn, Mode: types.ModeAnd, ParentOptions: []types.OptionID{"x"}}}},
					{RuleID: "format", Mode: types.ModeAnd, Sequence: 2,
						Conditions: []types.Condition{{Operator: types.OperatorLength, Mode: types.ModeAnd, Value: "1,10"}}},
					{RuleID: "second", ParentQuestionID: parentOf("p"), Mode: types.ModeOr, Sequence: 1,
						Conditions: []types.Condition{{Operator: types.OperatorIn, Mode: types.ModeAnd, ParentOptions: []types.OptionID{"x"}}}},
				},
			},
		},
	}

	compiled := MustCompile(set)
	q, _ := compiled.Question("d")

	var all, parent []types.RuleID
	for _, r := range q.Rules {
		all = append(all, r.ID)
	}
	for _, r := range q.Parent {
		parent = append(parent, r.ID)
	}

	if want := []types.RuleID{"first", "second", "format", "third"}; !reflect.DeepEqual(all, want) {
		t.Errorf("Rules = %v, want %v", all, want)
	}
	if want := []types.RuleID{"first", "second", "third"}; !reflect.DeepEqual(parent, want) {
		t.Errorf("Parent = %v, want %v", parent, want)
	}
}

func TestCompile_DoesNotModifyInput(t *testing.T) {
	set := marriageSet()
	before := marriageSet()

	MustCompile(set)

	if !reflect.DeepEqual(set, before) {
		t.Error("Compile() modified its input")
	}
}

func TestCompile_Errors(t *testing.T) {
	withRule := func(r types.Rule) *types.QuestionSet {
		return &types.QuestionSet{Questions: []types.Question{
			{QuestionID: "p", DataType: types.DataTypeRadioButton},
			{QuestionID: "d", DataType: types.DataTypeText, Rules: []types.Rule{r}},
		}}
	}
	withCondition := func(c types.Condition) *types.QuestionSet {
		return withRule(types.Rule{
			ParentQuestionID: parentOf("p"),
			Mode:             types.ModeAnd,
			Conditions:       []types.Condition{c},
		})
	}

	tests := []struct {
		name    string
		set     *types.QuestionSet
		wantErr error
	}{
		{
			name:    "nil set",
			set:     nil,
			wantErr: types.ErrEmptyQuestionSet,
		},
		{
			name:    "no questions",
			set:     &types.QuestionSet{},
			wantErr: types.ErrEmptyQuestionSet,
		},
		{
			name: "missing question id",
			set: &types.QuestionSet{Questions: []types.Question{
				{DataType: types.DataTypeText},
			}},
			wantErr: types.ErrMissingQuestionID,
		},
		{
			name: "duplicate question id",
			set: &types.QuestionSet{Questions: []types.Question{
				{QuestionID: "a", DataType: types.DataTypeText},
				{QuestionID: "a", DataType: types.DataTypeEmail},
			}},
			wantErr: types.ErrDuplicateQuestion,
		},
		{
			name: "unknown data type",
			set: &types.QuestionSet{Questions: []types.Question{
				{QuestionID: "a", DataType: "Slider"},
			}},
			wantErr: types.ErrUnknownDataType,
		},
		{
			name: "rule question mismatch",
			set: withRule(types.Rule{
				QuestionID: "p",
				Mode:       types.ModeAnd,
				Conditions: []types.Condition{{Operator: types.OperatorLength, Mode: types.ModeAnd}},
			}),
			wantErr: types.ErrRuleQuestionMismatch,
		},
		{
			name: "invalid rule mode",
			set: withRule(types.Rule{
				Mode:       "XOR",
				Conditions: []types.Condition{{Operator: types.OperatorLength, Mode: types.ModeAnd}},
			}),
			wantErr: types.ErrInvalidMode,
		},
		{
			name:    "rule without conditions",
			set:     withRule(types.Rule{Mode: types.ModeAnd}),
			wantErr: types.ErrEmptyRule,
		},
		{
			name:    "self reference",
			set:     withRule(inRule("d", types.ModeAnd, 0, "x")),
			wantErr: types.ErrSelfReference,
		},
		{
			name:    "unknown parent",
			set:     withRule(inRule("missing", types.ModeAnd, 0, "x")),
			wantErr: types.ErrUnknownQuestion,
		},
		{
			name:    "invalid condition mode",
			set:     withCondition(types.Condition{Operator: types.OperatorIn, Mode: "and", ParentOptions: []types.OptionID{"x"}}),
			wantErr: types.ErrInvalidMode,
		},
		{
			name:    "empty parent options",
			set:     withCondition(types.Condition{Operator: types.OperatorIn, Mode: types.ModeAnd}),
			wantErr: types.ErrEmptyParentOptions,
		},
		{
			name:    "invalid operator",
			set:     withCondition(types.Condition{Operator: "BETWEEN", Mode: types.ModeAnd}),
			wantErr: types.ErrInvalidOperator,
		},
		{
			name: "invalid option type",
			set: withCondition(types.Condition{
				Operator:      types.OperatorIn,
				Mode:          types.ModeAnd,
				ParentOptions: []types.OptionID{"x"},
				OptionType:    "Most",
			}),
			wantErr: types.ErrInvalidOptionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.set)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile() did not panic on empty set")
		}
	}()
	MustCompile(&types.QuestionSet{})
}
