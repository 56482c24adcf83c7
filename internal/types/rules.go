// internal/types/rules.go
package types

/*
 * Question-set structures consumed by internal/rules and internal/validate.
 *
 * Key types:
 *   - QuestionSet: a CMS-authored questionnaire
 *   - Question: one question with its data type and attached rules
 *   - Rule: conditions gating a dependent question (or formatting its answer)
 *   - Condition: one operator + operand check
 *
 * Rule.Mode combines a rule with its sibling rules on the same dependent
 * question. Condition.Mode combines a condition with its sibling conditions
 * in the same rule. The two are independent.
 *
 * Everything here is read-only once loaded. Evaluation results are returned
 * as values (see rules.Outcome); conditions carry no mutable result flags.
 */

// Condition is a single check owned by a Rule.
type Condition struct {
	ConditionID ConditionID `json:"ConditionId,omitempty" yaml:"ConditionId,omitempty"`
	Operator    Operator    `json:"Operator" yaml:"Operator" jsonschema:"enum=IN,enum=LENGTH,enum=REGEX,enum=DATE"`
	Mode        Mode        `json:"Mode" yaml:"Mode" jsonschema:"enum=AND,enum=OR"`
	Negate      bool        `json:"Negate,omitempty" yaml:"Negate,omitempty"`
	// ParentOptions lists option ids of the parent question (IN only).
	ParentOptions []OptionID `json:"ParentOptions,omitempty" yaml:"ParentOptions,omitempty" jsonschema:"nullable"`
	// OptionType refines IN for Checkbox parents. Empty means AtLeastOne.
	OptionType OptionType `json:"OptionType,omitempty" yaml:"OptionType,omitempty" jsonschema:"nullable"`
	// Value encodes "min,max" (LENGTH), a pattern (REGEX) or date tokens (DATE).
	Value string `json:"Value,omitempty" yaml:"Value,omitempty" jsonschema:"nullable"`
	// Description is the message surfaced when the condition is the failing one.
	Description string `json:"Description,omitempty" yaml:"Description,omitempty" jsonschema:"nullable"`
}

// Rule belongs to exactly one dependent question.
type Rule struct {
	RuleID     RuleID     `json:"RuleId,omitempty" yaml:"RuleId,omitempty"`
	QuestionID QuestionID `json:"QuestionId,omitempty" yaml:"QuestionId,omitempty"`
	// ParentQuestionID is nil for dependent-property (format) rules.
	ParentQuestionID *QuestionID `json:"ParentQuestionId,omitempty" yaml:"ParentQuestionId,omitempty" jsonschema:"nullable"`
	Mode             Mode        `json:"Mode" yaml:"Mode" jsonschema:"enum=AND,enum=OR"`
	Sequence         int         `json:"Sequence,omitempty" yaml:"Sequence,omitempty"`
	Conditions       []Condition `json:"Conditions" yaml:"Conditions" jsonschema:"minItems=1"`
}

// HasParent reports whether the rule gates applicability.
func (r *Rule) HasParent() bool {
	return r.ParentQuestionID != nil && *r.ParentQuestionID != ""
}

// Option is one selectable answer of a choice question.
type Option struct {
	OptionID OptionID `json:"OptionId" yaml:"OptionId"`
	Label    string   `json:"Label,omitempty" yaml:"Label,omitempty"`
}

// Question is one question of a question set.
type Question struct {
	QuestionID QuestionID `json:"QuestionId" yaml:"QuestionId"`
	DataType   DataType   `json:"DataType" yaml:"DataType" jsonschema:"enum=Boolean,enum=RadioButton,enum=Checkbox,enum=Dropdown,enum=LookUpList,enum=Text,enum=TextArea,enum=Email,enum=Date"`
	Mandatory  bool       `json:"Mandatory,omitempty" yaml:"Mandatory,omitempty"`
	Label      string     `json:"Label,omitempty" yaml:"Label,omitempty"`
	Options    []Option   `json:"Options,omitempty" yaml:"Options,omitempty" jsonschema:"nullable"`
	Rules      []Rule     `json:"Rules,omitempty" yaml:"Rules,omitempty" jsonschema:"nullable"`
}

// QuestionSet is a complete CMS questionnaire.
type QuestionSet struct {
	QuestionSetID QuestionSetID `json:"QuestionSetId,omitempty" yaml:"QuestionSetId,omitempty"`
	Version       int           `json:"Version,omitempty" yaml:"Version,omitempty"`
	Questions     []Question    `json:"Questions" yaml:"Questions"`
}
