package types

import (
	"fmt"

	"github.com/google/uuid"
)

// idNamespace roots every derived rule and condition id.
var idNamespace = uuid.MustParse("0d9f5a52-7c1e-4c64-9a0b-4b1f3b2e6c11")

// DeriveRuleID returns a stable UUIDv5 for the rule at position idx of question q.
// Identical question sets always derive identical ids.
func DeriveRuleID(q QuestionID, idx int) RuleID {
	name := fmt.Sprintf("%s/rules/%d", q, idx)
	return RuleID(uuid.NewSHA1(idNamespace, []byte(name)).String())
}

// DeriveConditionID returns a stable UUIDv5 for condition cond of rule r.
func DeriveConditionID(r RuleID, cond int) ConditionID {
	name := fmt.Sprintf("%s/conditions/%d", r, cond)
	return ConditionID(uuid.NewSHA1(idNamespace, []byte(name)).String())
}

// NewQuestionSetID generates a UUIDv7 question set identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewQuestionSetID() QuestionSetID {
	return QuestionSetID(uuid.Must(uuid.NewV7()).String())
}

// ParseQuestionSetID validates and converts a string to QuestionSetID.
func ParseQuestionSetID(s string) (QuestionSetID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("question set id %q: %w", s, err)
	}
	return QuestionSetID(s), nil
}
