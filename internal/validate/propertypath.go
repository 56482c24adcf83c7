package validate

import "fmt"

// DatePart names one sub-field of a date answer.
type DatePart string

const (
	DatePartDay   DatePart = "Day"
	DatePartMonth DatePart = "Month"
	DatePartYear  DatePart = "Year"
)

// AnswerPath returns the model-binding path of the answer at index.
func AnswerPath(index int) string {
	return fmt.Sprintf("Questions[%d].Answer", index)
}

// DatePartPath returns the path of one date sub-field at index.
func DatePartPath(index int, part DatePart) string {
	return AnswerPath(index) + "." + string(part)
}
