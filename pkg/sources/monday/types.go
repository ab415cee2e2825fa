package monday

// User is a monday.com account user.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Enabled bool   `json:"enabled"`
	IsAdmin bool   `json:"is_admin"`
	IsGuest bool   `json:"is_guest"`
}

// Team is a monday.com team.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Users []User `json:"users"`
}

// Column is a board column definition. SettingsStr carries the per-type
// settings as embedded JSON, notably the labels of status and dropdown
// columns.
type Column struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"` // text, long_text, status, dropdown, date, people, ...
	SettingsStr string `json:"settings_str"`
}

// Board is a monday.com board, migrated as a template.
type Board struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        string   `json:"board_kind"`
	Columns     []Column `json:"columns"`
}

// ColumnValue is one cell of a board item, flattened to display text.
type ColumnValue struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// Item is a board row, migrated as an instance.
type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CreatedAt    string        `json:"created_at"`
	Creator      *User         `json:"creator"`
	ColumnValues []ColumnValue `json:"column_values"`
}
