package googleforms

// Info is the form header.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Option is one choice of a choice question.
type Option struct {
	Value string `json:"value"`
}

// ChoiceQuestion is a radio, checkbox or dropdown question.
type ChoiceQuestion struct {
	Type    string   `json:"type"` // RADIO, CHECKBOX, DROP_DOWN
	Options []Option `json:"options"`
}

// TextQuestion is a short or paragraph text question.
type TextQuestion struct {
	Paragraph bool `json:"paragraph,omitempty"`
}

// ScaleQuestion is a linear scale question.
type ScaleQuestion struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Question is the question payload of an item. Exactly one of the typed
// members is set.
type Question struct {
	QuestionID         string          `json:"questionId"`
	Required           bool            `json:"required,omitempty"`
	ChoiceQuestion     *ChoiceQuestion `json:"choiceQuestion,omitempty"`
	TextQuestion       *TextQuestion   `json:"textQuestion,omitempty"`
	ScaleQuestion      *ScaleQuestion  `json:"scaleQuestion,omitempty"`
	DateQuestion       *struct{}       `json:"dateQuestion,omitempty"`
	TimeQuestion       *struct{}       `json:"timeQuestion,omitempty"`
	FileUploadQuestion *struct{}       `json:"fileUploadQuestion,omitempty"`
}

// QuestionItem wraps a question inside a form item.
type QuestionItem struct {
	Question Question `json:"question"`
}

// Item is one element of a form: a question, a question grid, or static
// content (page breaks, text, media).
type Item struct {
	ItemID            string        `json:"itemId"`
	Title             string        `json:"title,omitempty"`
	Description       string        `json:"description,omitempty"`
	QuestionItem      *QuestionItem `json:"questionItem,omitempty"`
	QuestionGroupItem *struct{}     `json:"questionGroupItem,omitempty"`
}

// Form is a full form definition, migrated as a kickoff-form template.
type Form struct {
	FormID string `json:"formId"`
	Info   Info   `json:"info"`
	Items  []Item `json:"items"`
}

// TextAnswers is the list of values a respondent gave one question.
type TextAnswers struct {
	Answers []struct {
		Value string `json:"value"`
	} `json:"answers"`
}

// Answer is the response to one question.
type Answer struct {
	QuestionID  string       `json:"questionId"`
	TextAnswers *TextAnswers `json:"textAnswers,omitempty"`
}

// Response is one form submission, migrated as an instance.
type Response struct {
	ResponseID        string            `json:"responseId"`
	CreateTime        string            `json:"createTime"`
	LastSubmittedTime string            `json:"lastSubmittedTime,omitempty"`
	RespondentEmail   string            `json:"respondentEmail,omitempty"`
	Answers           map[string]Answer `json:"answers"`
}
