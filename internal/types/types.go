// Package types provides the domain model shared across formkeeper components.
//
// The structs here mirror the JSON contract of the CMS question-set payload
// and of the answer snapshot submitted by the portal. Field names follow the
// CMS casing (QuestionId, ParentQuestionId, ...) so documents round-trip
// without a mapping layer.
//
// Nothing in this package evaluates rules; see internal/rules and
// internal/validate.
package types

// QuestionID identifies a question within a question set.
type QuestionID string

// OptionID identifies one selectable option of a choice question.
type OptionID string

// RuleID identifies a rule. Optional on the wire; derived when absent.
type RuleID string

// ConditionID identifies a condition. Optional on the wire; derived when absent.
type ConditionID string

// QuestionSetID identifies a CMS question set.
type QuestionSetID string

// DataType is the input type of a question.
type DataType string

const (
	DataTypeBoolean     DataType = "Boolean"
	DataTypeRadioButton DataType = "RadioButton"
	DataTypeCheckbox    DataType = "Checkbox"
	DataTypeDropdown    DataType = "Dropdown"
	DataTypeLookUpList  DataType = "LookUpList"
	DataTypeText        DataType = "Text"
	DataTypeTextArea    DataType = "TextArea"
	DataTypeEmail       DataType = "Email"
	DataTypeDate        DataType = "Date"
)

// AllDataTypes lists every legal DataType in declaration order.
var AllDataTypes = []DataType{
	DataTypeBoolean,
	DataTypeRadioButton,
	DataTypeCheckbox,
	DataTypeDropdown,
	DataTypeLookUpList,
	DataTypeText,
	DataTypeTextArea,
	DataTypeEmail,
	DataTypeDate,
}

// SelectionKind describes how a data type holds its answer.
type SelectionKind int

const (
	// SelectionNone is a free-text answer (Text, TextArea, Email, Date).
	SelectionNone SelectionKind = iota
	// SelectionSingle holds at most one selected option id in Answer.Value.
	SelectionSingle
	// SelectionMulti holds a set of options with IsSelected flags.
	SelectionMulti
)

// SelectionKind reports how answers of this data type are shaped.
// Unknown data types hold free text.
func (d DataType) SelectionKind() SelectionKind {
	switch d {
	case DataTypeBoolean, DataTypeRadioButton, DataTypeDropdown, DataTypeLookUpList:
		return SelectionSingle
	case DataTypeCheckbox:
		return SelectionMulti
	default:
		return SelectionNone
	}
}

// Mode groups sibling rules or sibling conditions.
type Mode string

const (
	ModeAnd Mode = "AND"
	ModeOr  Mode = "OR"
)

// Valid reports whether m is AND or OR.
func (m Mode) Valid() bool {
	return m == ModeAnd || m == ModeOr
}

// Operator selects the check a condition performs.
type Operator string

const (
	// OperatorIn tests the parent question's selection against ParentOptions.
	OperatorIn Operator = "IN"
	// OperatorLength bounds the character length of a free-text answer.
	OperatorLength Operator = "LENGTH"
	// OperatorRegex matches a free-text answer against a pattern.
	OperatorRegex Operator = "REGEX"
	// OperatorDate applies date-check tokens to a date answer.
	OperatorDate Operator = "DATE"
)

// OptionType refines IN on multi-select parents.
type OptionType string

const (
	// OptionTypeSingle requires exactly one selection, inside ParentOptions.
	OptionTypeSingle OptionType = "Single"
	// OptionTypeExact requires every selection to be inside ParentOptions.
	OptionTypeExact OptionType = "Exact"
	// OptionTypeAtLeastOne requires any selection inside ParentOptions.
	OptionTypeAtLeastOne OptionType = "AtLeastOne"
)
