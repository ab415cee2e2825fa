package monday

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// columnTypes maps monday.com column types onto capture types. Unknown types
// fall back to text.
var columnTypes = map[string]model.CaptureType{
	"text":      model.CaptureText,
	"long_text": model.CaptureTextarea,
	"status":    model.CaptureSelect,
	"dropdown":  model.CaptureMultiselect,
	"date":      model.CaptureDate,
	"people":    model.CaptureAssignees,
	"file":      model.CaptureFile,
	"checkbox":  model.CaptureRadio,
	"numbers":   model.CaptureText,
	"email":     model.CaptureText,
	"phone":     model.CaptureText,
	"link":      model.CaptureText,
	"rating":    model.CaptureText,
	"country":   model.CaptureText,
	"tags":      model.CaptureText,
	"hour":      model.CaptureText,
	"week":      model.CaptureText,
	"location":  model.CaptureText,
}

// skippedColumns are computed or structural columns that have no form-field
// equivalent and are silently dropped.
var skippedColumns = map[string]bool{
	"name":           true, // implicit item name, becomes the instance name
	"auto_number":    true,
	"board_relation": true,
	"button":         true,
	"creation_log":   true,
	"dependency":     true,
	"doc":            true,
	"formula":        true,
	"item_id":        true,
	"last_updated":   true,
	"mirror":         true,
	"progress":       true,
	"subtasks":       true,
	"time_tracking":  true,
	"vote":           true,
	"world_clock":    true,
}

func transformUser(user User) model.Member {
	first, last := splitName(user.Name)

	role := model.RoleStandard
	if user.IsAdmin {
		role = model.RoleAdmin
	} else if user.IsGuest {
		role = model.RoleLight
	}

	return model.Member{
		SourceID:  user.ID,
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    user.Enabled,
	}
}

func transformTeam(team Team) model.Group {
	group := model.Group{
		SourceID: team.ID,
		Name:     team.Name,
	}

	for _, user := range team.Users {
		if user.Email != "" {
			group.Members = append(group.Members, user.Email)
		}
	}

	return group
}

// transformBoard turns a board into a kickoff-form template: each column
// becomes a capture, and items later replay their cell values against those
// captures. Boards carry no step sequence.
func transformBoard(board Board) model.Template {
	template := model.Template{
		SourceID:    board.ID,
		Title:       board.Name,
		Description: board.Description,
	}

	position := 0

	for _, column := range board.Columns {
		if skippedColumns[column.Type] {
			continue
		}

		position++

		capture, warning := transformColumn(column, position)
		if warning != "" {
			template.Warnings = append(template.Warnings, warning)
		}

		template.Captures = append(template.Captures, capture)
	}

	return template
}

func transformColumn(column Column, position int) (model.Capture, string) {
	captureType, ok := columnTypes[column.Type]

	warning := ""
	if !ok {
		captureType = model.CaptureText
		warning = fmt.Sprintf("column %q has unsupported type %q, defaulted to text", column.Title, column.Type)
	}

	capture := model.Capture{
		SourceID: column.ID,
		Label:    column.Title,
		Type:     captureType,
		Position: position,
	}

	switch column.Type {
	case "status", "dropdown":
		capture.Options = columnOptions(column)
	case "checkbox":
		capture.Options = []string{"Yes", "No"}
	}

	return capture, warning
}

// columnOptions extracts the label choices embedded in a status or dropdown
// column's settings JSON. Status labels arrive as an index-keyed map, dropdown
// labels as an array.
func columnOptions(column Column) []string {
	if column.SettingsStr == "" {
		return nil
	}

	switch column.Type {
	case "status":
		var settings struct {
			Labels map[string]string `json:"labels"`
		}

		if err := json.Unmarshal([]byte(column.SettingsStr), &settings); err != nil {
			return nil
		}

		indexes := make([]int, 0, len(settings.Labels))

		for key := range settings.Labels {
			index, err := strconv.Atoi(key)
			if err != nil {
				continue
			}

			indexes = append(indexes, index)
		}

		sort.Ints(indexes)

		options := make([]string, 0, len(indexes))

		for _, index := range indexes {
			if label := settings.Labels[strconv.Itoa(index)]; label != "" {
				options = append(options, label)
			}
		}

		return options
	case "dropdown":
		var settings struct {
			Labels []struct {
				Name string `json:"name"`
			} `json:"labels"`
		}

		if err := json.Unmarshal([]byte(column.SettingsStr), &settings); err != nil {
			return nil
		}

		options := make([]string, 0, len(settings.Labels))

		for _, label := range settings.Labels {
			if label.Name != "" {
				options = append(options, label.Name)
			}
		}

		return options
	}

	return nil
}

// transformItem turns a board item into an instance. Field values are keyed
// by column id, matching the capture source ids of the board's template.
func transformItem(board Board, item Item) model.Instance {
	instance := model.Instance{
		SourceID:         item.ID,
		Name:             item.Name,
		TemplateSourceID: board.ID,
		Status:           model.InstanceActive,
	}

	if item.Creator != nil {
		instance.Owner = item.Creator.Email
	}

	if createdAt, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
		instance.CreatedAt = createdAt.UTC()
	}

	for _, value := range item.ColumnValues {
		if value.Text == "" || skippedColumns[value.Type] {
			continue
		}

		if instance.FieldValues == nil {
			instance.FieldValues = make(map[string]any)
		}

		instance.FieldValues[value.ID] = value.Text
	}

	return instance
}

// splitName splits a display name into first and last parts on the final
// space, keeping multi-word first names intact.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name, ""
	}

	return name[:idx], name[idx+1:]
}
