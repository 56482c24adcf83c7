// internal/rules/compile.go
package rules

import (
	"fmt"
	"slices"
	"sort"

	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Question-set compilation and validation.
 *
 * Compiles types.QuestionSet to CompiledSet: an immutable index of questions
 * with rules pre-sorted by Sequence, IN operands turned into option sets and
 * missing rule/condition ids derived.
 *
 * Compilation workflow:
 *   1. Validate question ids (present, unique) and data types
 *   2. Validate each rule (owner, mode, parent reference, non-empty)
 *   3. Validate each condition (mode, operator, IN operands, option type)
 *   4. Stable-sort rules by Sequence, split parent rules from format rules
 *
 * Structural errors are reported here, at load time. Evaluation never
 * returns errors: misconfigured LENGTH/REGEX/DATE operands are skipped by
 * internal/validate instead of rejected, so a bad format rule cannot block a
 * user from proceeding.
 *
 * Stable sort: rules with equal Sequence keep declaration order, so the
 * failing-condition report is deterministic across identical inputs.
 */

// CompiledCondition is a validated condition ready for evaluation.
type CompiledCondition struct {
	ID            types.ConditionID
	RuleID        types.RuleID
	Operator      types.Operator
	Mode          types.Mode
	Negate        bool
	OptionType    types.OptionType
	ParentOptions map[types.OptionID]struct{} // IN only
	Value         string
	Description   string
}

// CompiledRule is a validated rule with conditions in declaration order.
type CompiledRule struct {
	ID               types.RuleID
	QuestionID       types.QuestionID
	ParentQuestionID types.QuestionID // empty for dependent-property rules
	Mode             types.Mode
	Sequence         int
	Conditions       []CompiledCondition
}

// HasParent reports whether the rule takes part in applicability.
func (r *CompiledRule) HasParent() bool {
	return r.ParentQuestionID != ""
}

// CompiledQuestion is a question with its rules sorted by Sequence.
type CompiledQuestion struct {
	Question types.Question
	Index    int             // position in the question set
	Rules    []*CompiledRule // every rule, Sequence order
	Parent   []*CompiledRule // rules with a ParentQuestionId, Sequence order
}

// ID returns the question id.
func (q *CompiledQuestion) ID() types.QuestionID {
	return q.Question.QuestionID
}

// DataType returns the question's data type.
func (q *CompiledQuestion) DataType() types.DataType {
	return q.Question.DataType
}

// CompiledSet is an immutable, indexed question set.
// Safe for concurrent use: evaluation only reads it.
type CompiledSet struct {
	ID        types.QuestionSetID
	Version   int
	questions []*CompiledQuestion
	byID      map[types.QuestionID]*CompiledQuestion
}

// Question looks up a question by id.
func (s *CompiledSet) Question(id types.QuestionID) (*CompiledQuestion, bool) {
	q, ok := s.byID[id]
	return q, ok
}

// Questions returns the questions in set order.
func (s *CompiledSet) Questions() []*CompiledQuestion {
	return s.questions
}

// Len returns the number of questions.
func (s *CompiledSet) Len() int {
	return len(s.questions)
}

// Compile validates and indexes a question set for evaluation.
// The input is not modified.
func Compile(set *types.QuestionSet) (*CompiledSet, error) {
	if set == nil || len(set.Questions) == 0 {
		return nil, types.ErrEmptyQuestionSet
	}

	compiled := &CompiledSet{
		ID:        set.QuestionSetID,
		Version:   set.Version,
		questions: make([]*CompiledQuestion, 0, len(set.Questions)),
		byID:      make(map[types.QuestionID]*CompiledQuestion, len(set.Questions)),
	}

	for i, q := range set.Questions {
		if q.QuestionID == "" {
			return nil, fmt.Errorf("question %d: %w", i, types.ErrMissingQuestionID)
		}
		if _, dup := compiled.byID[q.QuestionID]; dup {
			return nil, fmt.Errorf("question %q: %w", q.QuestionID, types.ErrDuplicateQuestion)
		}
		if !slices.Contains(types.AllDataTypes, q.DataType) {
			return nil, fmt.Errorf("question %q: %w: %q", q.QuestionID, types.ErrUnknownDataType, q.DataType)
		}
		cq := &CompiledQuestion{Question: q, Index: i}
		compiled.questions = append(compiled.questions, cq)
		compiled.byID[q.QuestionID] = cq
	}

	// Parent references resolve against the full index, so rules are
	// compiled in a second pass.
	for _, cq := range compiled.questions {
		for i := range cq.Question.Rules {
			cr, err := compileRule(compiled, cq.ID(), i, &cq.Question.Rules[i])
			if err != nil {
				return nil, err
			}
			cq.Rules = append(cq.Rules, cr)
		}

		sort.SliceStable(cq.Rules, func(i, j int) bool {
			return cq.Rules[i].Sequence < cq.Rules[j].Sequence
		})
		for _, cr := range cq.Rules {
			if cr.HasParent() {
				cq.Parent = append(cq.Parent, cr)
			}
		}
	}

	return compiled, nil
}

// MustCompile compiles a question set and panics on error.
func MustCompile(set *types.QuestionSet) *CompiledSet {
	compiled, err := Compile(set)
	if err != nil {
		panic(err)
	}
	return compiled
}

// compileRule validates one rule of question q and its conditions.
func compileRule(set *CompiledSet, q types.QuestionID, idx int, rule *types.Rule) (*CompiledRule, error) {
	if rule.QuestionID != "" && rule.QuestionID != q {
		return nil, fmt.Errorf("question %q rule %d: %w (%q)", q, idx, types.ErrRuleQuestionMismatch, rule.QuestionID)
	}
	if !rule.Mode.Valid() {
		return nil, fmt.Errorf("question %q rule %d: %w, got %q", q, idx, types.ErrInvalidMode, rule.Mode)
	}
	if len(rule.Conditions) == 0 {
		return nil, fmt.Errorf("question %q rule %d: %w", q, idx, types.ErrEmptyRule)
	}

	id := rule.RuleID
	if id == "" {
		id = types.DeriveRuleID(q, idx)
	}

	cr := &CompiledRule{
		ID:         id,
		QuestionID: q,
		Mode:       rule.Mode,
		Sequence:   rule.Sequence,
		Conditions: make([]CompiledCondition, 0, len(rule.Conditions)),
	}

	if rule.HasParent() {
		parent := *rule.ParentQuestionID
		if parent == q {
			return nil, fmt.Errorf("question %q rule %d: %w", q, idx, types.ErrSelfReference)
		}
		if _, ok := set.byID[parent]; !ok {
			return nil, fmt.Errorf("question %q rule %d: parent %q: %w", q, idx, parent, types.ErrUnknownQuestion)
		}
		cr.ParentQuestionID = parent
	}

	for ci, cond := range rule.Conditions {
		cc, err := compileCondition(cond, id, ci)
		if err != nil {
			return nil, fmt.Errorf("question %q rule %d condition %d: %w", q, idx, ci, err)
		}
		cr.Conditions = append(cr.Conditions, cc)
	}

	return cr, nil
}

// compileCondition validates operator, mode and IN operands.
// LENGTH/REGEX/DATE values are kept verbatim; their parsing is lenient.
func compileCondition(cond types.Condition, rule types.RuleID, idx int) (CompiledCondition, error) {
	if !cond.Mode.Valid() {
		return CompiledCondition{}, fmt.Errorf("%w, got %q", types.ErrInvalidMode, cond.Mode)
	}

	switch cond.OptionType {
	case "", types.OptionTypeSingle, types.OptionTypeExact, types.OptionTypeAtLeastOne:
	default:
		return CompiledCondition{}, fmt.Errorf("%w: %q", types.ErrInvalidOptionType, cond.OptionType)
	}

	id := cond.ConditionID
	if id == "" {
		id = types.DeriveConditionID(rule, idx)
	}

	cc := CompiledCondition{
		ID:          id,
		RuleID:      rule,
		Operator:    cond.Operator,
		Mode:        cond.Mode,
		Negate:      cond.Negate,
		OptionType:  cond.OptionType,
		Value:       cond.Value,
		Description: cond.Description,
	}

	switch cond.Operator {
	case types.OperatorIn:
		if len(cond.ParentOptions) == 0 {
			return CompiledCondition{}, types.ErrEmptyParentOptions
		}
		cc.ParentOptions = make(map[types.OptionID]struct{}, len(cond.ParentOptions))
		for _, opt := range cond.ParentOptions {
			cc.ParentOptions[opt] = struct{}{}
		}
	case types.OperatorLength, types.OperatorRegex, types.OperatorDate:
	default:
		return CompiledCondition{}, fmt.Errorf("%w: %q", types.ErrInvalidOperator, cond.Operator)
	}

	return cc, nil
}

// ConditionsFor returns the question's conditions with the given operator,
// rules in Sequence order and conditions in declaration order.
func (q *CompiledQuestion) ConditionsFor(op types.Operator) []*CompiledCondition {
	var out []*CompiledCondition
	for _, r := range q.Rules {
		for i := range r.Conditions {
			if r.Conditions[i].Operator == op {
				out = append(out, &r.Conditions[i])
			}
		}
	}
	return out
}
