package rocketlane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfy/migrator/pkg/model"
)

func TestTransformUser(t *testing.T) {
	member := transformUser(User{UserID: 9, FirstName: "Srikrishnan", LastName: "Ganesan", Email: "sri@example.com", Type: "TEAM_MEMBER"})

	assert.Equal(t, "9", member.SourceID)
	assert.Equal(t, model.RoleStandard, member.Role)

	customer := transformUser(User{UserID: 10, Email: "client@example.com", Type: "CUSTOMER"})
	assert.Equal(t, model.RoleLight, customer.Role)
}

func TestTransformTemplate(t *testing.T) {
	template := transformTemplate(
		Template{TemplateID: 3, TemplateName: "SaaS Onboarding", Description: "Standard rollout"},
		[]Task{
			{TaskID: 31, TaskName: "Kickoff call", Assignees: []User{{Email: "csm@example.com"}}},
			{TaskID: 32, TaskName: "Provision workspace", DueDate: "2025-06-01"},
			{TaskID: 33, TaskName: ""},
		},
	)

	assert.Equal(t, "3", template.SourceID)
	assert.Equal(t, "SaaS Onboarding", template.Title)

	require.Len(t, template.Steps, 2)
	assert.Equal(t, []string{"csm@example.com"}, template.Steps[0].Assignees)
	assert.Equal(t, 2, template.Steps[1].Position)

	require.Len(t, template.Warnings, 1)
	assert.Contains(t, template.Warnings[0], "due dates")
}

func TestTransformProject(t *testing.T) {
	instance := transformProject(Project{
		ProjectID:   77,
		ProjectName: "Acme rollout",
		TemplateID:  3,
		Status:      ProjectStatus{Label: "Delivered"},
		Owner:       &User{Email: "owner@example.com"},
		CreatedAt:   1747730000000,
	})

	assert.Equal(t, "77", instance.SourceID)
	assert.Equal(t, "3", instance.TemplateSourceID)
	assert.Equal(t, model.InstanceCompleted, instance.Status)
	assert.Equal(t, "owner@example.com", instance.Owner)
	assert.Equal(t, time.UnixMilli(1747730000000).UTC(), instance.CreatedAt)
}

func TestProjectStatus(t *testing.T) {
	assert.Equal(t, model.InstanceActive, projectStatus("In Progress"))
	assert.Equal(t, model.InstanceCompleted, projectStatus("Done"))
	assert.Equal(t, model.InstanceArchived, projectStatus("Cancelled"))
	assert.Equal(t, model.InstanceActive, projectStatus(""))
}
