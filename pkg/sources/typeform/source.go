package typeform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Typeform.
type Source struct {
	client *Client
	logger *slog.Logger
}

// New builds the Typeform connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{client: apiClient, logger: logger}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "typeform"
}

// Readiness verifies the token.
func (s *Source) Readiness(ctx context.Context) error {
	account, err := s.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("typeform readiness: %w", err)
	}

	s.logger.Info("Typeform access verified", "account", account.Email)

	return nil
}

// Discover counts the forms and responses in scope. A personal token sees
// exactly one account member.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC(), Members: 1}

	forms, err := s.client.Forms(ctx)
	if err != nil {
		return nil, err
	}

	discovery.Templates = len(forms)

	for _, form := range forms {
		responses, err := s.client.Responses(ctx, form.ID)
		if err != nil {
			return nil, err
		}

		discovery.Instances += len(responses)
	}

	return discovery, nil
}

// Members returns the account owner, the only member visible to a token.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	account, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	if account.Email == "" {
		s.logger.Warn("Account has no email, members phase will be empty")

		return nil, nil
	}

	first, last := splitAlias(account.Alias)

	return []model.Member{{
		SourceID:  account.UserID,
		Email:     account.Email,
		FirstName: first,
		LastName:  last,
		Role:      model.RoleAdmin,
		Active:    true,
	}}, nil
}

// Templates transforms every form into a kickoff-form template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	summaries, err := s.client.Forms(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(summaries))

	for _, summary := range summaries {
		form, err := s.client.Form(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformForm(*form))
	}

	return templates, nil
}

// Instances transforms every completed response into an instance.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	summaries, err := s.client.Forms(ctx)
	if err != nil {
		return nil, err
	}

	var instances []model.Instance

	for _, summary := range summaries {
		form, err := s.client.Form(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		responses, err := s.client.Responses(ctx, summary.ID)
		if err != nil {
			return nil, err
		}

		for _, response := range responses {
			instances = append(instances, transformResponse(*form, response))
		}
	}

	return instances, nil
}

func splitAlias(alias string) (string, string) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return "", ""
	}

	idx := strings.LastIndex(alias, " ")
	if idx < 0 {
		return alias, ""
	}

	return alias[:idx], alias[idx+1:]
}
