// Package questionbank holds the configurable questionnaire: ordered questions
// grouped under subcategories of the fixed audit category. Submissions freeze
// the current listing into the audit record; the matrix view always reads the
// live listing.
package questionbank

// QuestionType enumerates the supported answer widgets.
type QuestionType string

const (
	TypeRadio    QuestionType = "radio"
	TypeNumber   QuestionType = "number"
	TypeTextarea QuestionType = "textarea"
)

// RadioOptions are the fixed choices for radio questions.
var RadioOptions = []string{"Satisfactory", "Not Satisfactory", "Not Applicable"}

// Question is one row of the questionnaire. Immutable once snapshotted into an
// audit record; edits here never touch historical submissions.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Order   int          `json:"order"`
}

// Subcategory groups questions, e.g. "FIP 1" or "Conventional".
type Subcategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}
