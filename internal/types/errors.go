package types

import "errors"

// Sentinel errors for formkeeper operations.
var (
	// ErrEmptyQuestionSet indicates a question set with no questions.
	ErrEmptyQuestionSet = errors.New("question set has no questions")

	// ErrMissingQuestionID indicates a question without a QuestionId.
	ErrMissingQuestionID = errors.New("question id required")

	// ErrDuplicateQuestion indicates two questions share a QuestionId.
	ErrDuplicateQuestion = errors.New("duplicate question id")

	// ErrUnknownQuestion indicates a reference to a question not in the set.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrUnknownDataType indicates a DataType outside the supported list.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrRuleQuestionMismatch indicates a rule whose QuestionId names another question.
	ErrRuleQuestionMismatch = errors.New("rule belongs to a different question")

	// ErrSelfReference indicates a rule whose parent is its own dependent question.
	ErrSelfReference = errors.New("rule parent is the dependent question")

	// ErrEmptyRule indicates a rule with no conditions.
	ErrEmptyRule = errors.New("rule has no conditions")

	// ErrInvalidMode indicates a Mode other than AND or OR.
	ErrInvalidMode = errors.New("mode must be AND or OR")

	// ErrInvalidOperator indicates an operator outside IN, LENGTH, REGEX, DATE.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrEmptyParentOptions indicates an IN condition without parent options.
	ErrEmptyParentOptions = errors.New("IN condition has no parent options")

	// ErrInvalidOptionType indicates an OptionType outside Single, Exact, AtLeastOne.
	ErrInvalidOptionType = errors.New("invalid option type")

	// ErrQuestionSetNotFound indicates no stored question set matches the id.
	ErrQuestionSetNotFound = errors.New("question set not found")

	// ErrSchemaViolation indicates a payload rejected by the question-set schema.
	ErrSchemaViolation = errors.New("question set schema violation")
)
