package typeform

// Account is the authenticated Typeform account.
type Account struct {
	UserID string `json:"user_id"`
	Alias  string `json:"alias"`
	Email  string `json:"email"`
}

// FormSummary is one form in the workspace listing.
type FormSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	LastUpdatedAt string `json:"last_updated_at,omitempty"`
}

// Choice is one option of a choice field.
type Choice struct {
	Label string `json:"label"`
}

// FieldProperties carries the per-type settings of a form field.
type FieldProperties struct {
	Description            string   `json:"description,omitempty"`
	Choices                []Choice `json:"choices,omitempty"`
	AllowMultipleSelection bool     `json:"allow_multiple_selection,omitempty"`
	Steps                  int      `json:"steps,omitempty"` // rating/opinion scale size
}

// FieldValidations carries the validation settings of a form field.
type FieldValidations struct {
	Required bool `json:"required,omitempty"`
}

// FormField is one question of a form.
type FormField struct {
	ID          string           `json:"id"`
	Ref         string           `json:"ref,omitempty"`
	Title       string           `json:"title"`
	Type        string           `json:"type"` // short_text, multiple_choice, yes_no, ...
	Properties  FieldProperties  `json:"properties"`
	Validations FieldValidations `json:"validations"`
}

// Form is a full form definition, migrated as a kickoff-form template.
type Form struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

// AnswerField identifies the question an answer belongs to.
type AnswerField struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Ref  string `json:"ref,omitempty"`
}

// Answer is one answered question inside a response. Exactly one value
// member is set, selected by Type.
type Answer struct {
	Field       AnswerField `json:"field"`
	Type        string      `json:"type"` // text, email, number, boolean, date, choice, choices, file_url, url, phone_number
	Text        string      `json:"text,omitempty"`
	Email       string      `json:"email,omitempty"`
	URL         string      `json:"url,omitempty"`
	FileURL     string      `json:"file_url,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	Date        string      `json:"date,omitempty"`
	Number      *float64    `json:"number,omitempty"`
	Boolean     *bool       `json:"boolean,omitempty"`
	Choice      *Choice     `json:"choice,omitempty"`
	Choices     *struct {
		Labels []string `json:"labels"`
	} `json:"choices,omitempty"`
}

// Response is one completed form submission, migrated as an instance.
type Response struct {
	Token       string   `json:"token"`
	SubmittedAt string   `json:"submitted_at"`
	Answers     []Answer `json:"answers"`
}
