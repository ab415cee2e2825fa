package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requiredTag = "required"
	oneofTag    = "oneof"
	minTag      = "min"
	emailTag    = "email"
)

func assertFieldError(t *testing.T, err error, field, tag string) {
	t.Helper()

	require.Error(t, err)

	var validationErrors validator.ValidationErrors

	require.True(t, errors.As(err, &validationErrors))

	for _, fieldErr := range validationErrors {
		if fieldErr.Field() == field && fieldErr.Tag() == tag {
			return
		}
	}

	t.Errorf("expected a %q error on field %s, got: %v", tag, field, err)
}

func TestMember_Validation_ValidMember(t *testing.T) {
	member := &Member{
		SourceID:  "u-1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      RoleAdmin,
		Active:    true,
	}

	validate := validator.New()
	err := validate.Struct(member)
	assert.NoError(t, err)
}

func TestMember_Validation_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		member *Member
		field  string
		tag    string
	}{
		{
			name:   "missing email",
			member: &Member{Role: RoleStandard},
			field:  "Email",
			tag:    requiredTag,
		},
		{
			name:   "malformed email",
			member: &Member{Email: "not-an-address", Role: RoleStandard},
			field:  "Email",
			tag:    emailTag,
		},
		{
			name:   "missing role",
			member: &Member{Email: "ada@example.com"},
			field:  "Role",
			tag:    requiredTag,
		},
		{
			name:   "unknown role",
			member: &Member{Email: "ada@example.com", Role: "owner"},
			field:  "Role",
			tag:    oneofTag,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			validate := validator.New()
			err := validate.Struct(tc.member)
			assertFieldError(t, err, tc.field, tc.tag)
		})
	}
}

func TestMember_RoleSerialization(t *testing.T) {
	member := Member{Email: "grace@example.com", Role: RoleLight}

	jsonData, err := json.Marshal(member)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"role":"light"`)

	var deserialized Member

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)
	assert.Equal(t, RoleLight, deserialized.Role)
}

func TestGroup_Validation_RequiresName(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(&Group{Members: []string{"ada@example.com"}})
	assertFieldError(t, err, "Name", requiredTag)

	err = validate.Struct(&Group{Name: "Finance"})
	assert.NoError(t, err)
}

func TestTemplate_Validation(t *testing.T) {
	template := &Template{
		SourceID: "proj-1",
		Title:    "Employee Onboarding",
		Steps: []Step{
			{Alias: "collect_docs", Title: "Collect documents", Type: StepTask, Position: 1},
		},
		Captures: []Capture{
			{Label: "Start date", Type: CaptureDate, Position: 1},
		},
	}

	validate := validator.New()
	err := validate.Struct(template)
	assert.NoError(t, err)

	err = validate.Struct(&Template{})
	assertFieldError(t, err, "Title", requiredTag)
}

func TestStep_Validation(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(&Step{Type: StepTask})
	assertFieldError(t, err, "Title", requiredTag)

	err = validate.Struct(&Step{Title: "Review contract"})
	assertFieldError(t, err, "Type", requiredTag)

	withBadDeadline := &Step{
		Title:    "Provision laptop",
		Type:     StepTask,
		Deadline: &Deadline{Value: 2, Unit: "decades", Anchor: DeadlineFromLaunch},
	}

	err = validate.Struct(withBadDeadline)
	assertFieldError(t, err, "Unit", oneofTag)
}

func TestConditionalRule_Validation(t *testing.T) {
	rule := &ConditionalRule{
		CaptureRef:  "contract_type",
		Operator:    OperatorEquals,
		Value:       "Fixed term",
		Action:      ActionShow,
		TargetSteps: []string{"review_contract"},
	}

	validate := validator.New()
	err := validate.Struct(rule)
	assert.NoError(t, err)

	rule.TargetSteps = nil
	err = validate.Struct(rule)
	assertFieldError(t, err, "TargetSteps", minTag)

	rule.TargetSteps = []string{"review_contract"}
	rule.CaptureRef = ""
	err = validate.Struct(rule)
	assertFieldError(t, err, "CaptureRef", requiredTag)
}

func TestInstance_Validation(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(&Instance{Name: "ACME onboarding"})
	assertFieldError(t, err, "TemplateSourceID", requiredTag)

	err = validate.Struct(&Instance{
		Name:             "ACME onboarding",
		TemplateSourceID: "proj-1",
		Status:           InstanceActive,
	})
	assert.NoError(t, err)
}

func TestTemplate_StepByAlias(t *testing.T) {
	template := Template{
		Steps: []Step{
			{Alias: "collect_docs", Title: "Collect documents"},
			{Alias: "review_contract", Title: "Review contract"},
		},
	}

	step := template.StepByAlias("review_contract")
	require.NotNil(t, step)
	assert.Equal(t, "Review contract", step.Title)

	assert.Nil(t, template.StepByAlias("missing"))
}

func TestDiscovery_Total(t *testing.T) {
	discovery := Discovery{Members: 12, Groups: 3, Templates: 5, Instances: 40}

	assert.Equal(t, 60, discovery.Total())
}
