package model

import "time"

// Discovery is the read-only inventory a source produces before anything is
// migrated. Its counts are the baseline the validation phase later compares
// against.
type Discovery struct {
	Source      string    `json:"source"`
	Members     int       `json:"members"`
	Groups      int       `json:"groups"`
	Templates   int       `json:"templates"`
	Instances   int       `json:"instances"`
	Warnings    []string  `json:"warnings,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Total returns the total number of objects the migration will touch.
func (d *Discovery) Total() int {
	return d.Members + d.Groups + d.Templates + d.Instances
}
