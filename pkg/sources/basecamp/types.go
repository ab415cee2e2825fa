package basecamp

// Person is someone on the Basecamp account.
type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
	Admin        bool   `json:"admin"`
	Employee     bool   `json:"employee"`
}

// DockEntry is one tool pinned to a project (todoset, message_board, ...).
type DockEntry struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Project is a Basecamp project.
type Project struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Dock        []DockEntry `json:"dock"`
}

// Todoset returns the project's todoset dock entry, or nil when the tool is
// disabled.
func (p *Project) Todoset() *DockEntry {
	for i := range p.Dock {
		if p.Dock[i].Name == "todoset" && p.Dock[i].Enabled {
			return &p.Dock[i]
		}
	}

	return nil
}

// TodoList is a to-do list inside a project.
type TodoList struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Todo is a single to-do item.
type Todo struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	DueOn       string   `json:"due_on,omitempty"`
	Assignees   []Person `json:"assignees,omitempty"`
}
