package tallyfy

// Account is the authenticated user, used by readiness checks.
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// MemberRecord is an organization member as the API returns it.
type MemberRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

// GroupRecord is a member group.
type GroupRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"` // member ids
}

// ChecklistRecord is a created template ("blueprint").
type ChecklistRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StepRecord is a created template step.
type StepRecord struct {
	ID       string `json:"id"`
	Alias    string `json:"alias"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// CaptureRecord is a created form field.
type CaptureRecord struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// RuleRecord is a created conditional rule.
type RuleRecord struct {
	ID string `json:"id"`
}

// RunRecord is a launched process.
type RunRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ChecklistID string `json:"checklist_id"`
	Status      string `json:"status"`
}

// TaskRecord is one task of a running process.
type TaskRecord struct {
	ID     string `json:"id"`
	Alias  string `json:"alias"`
	Title  string `json:"title"`
	Status string `json:"status"`
}
