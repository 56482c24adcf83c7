package questionset

import (
	"encoding/json"
	"fmt"

	"github.com/solatis/formkeeper/internal/types"
)

// LoadAnswers parses a JSON or YAML array of answers.
func LoadAnswers(data []byte) (types.Answers, error) {
	doc, err := toJSON(data)
	if err != nil {
		return nil, err
	}
	var answers types.Answers
	if err := json.Unmarshal(doc, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}
