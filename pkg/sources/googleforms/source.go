package googleforms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyfy/migrator/pkg/model"
)

// Source implements the connector contract for Google Forms.
type Source struct {
	client  *Client
	logger  *slog.Logger
	formIDs []string
}

// New builds the Google Forms connector.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	apiClient, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Source{
		client:  apiClient,
		logger:  logger,
		formIDs: cfg.FormIDs,
	}, nil
}

// Name returns the vendor id.
func (s *Source) Name() string {
	return "googleforms"
}

// Readiness verifies the token by fetching the first configured form.
func (s *Source) Readiness(ctx context.Context) error {
	form, err := s.client.Form(ctx, s.formIDs[0])
	if err != nil {
		return fmt.Errorf("googleforms readiness: %w", err)
	}

	s.logger.Info("Google Forms access verified", "form", form.Info.Title, "forms", len(s.formIDs))

	return nil
}

// Discover counts the configured forms and their responses. The Forms API
// exposes no member directory, so members stay at zero.
func (s *Source) Discover(ctx context.Context) (*model.Discovery, error) {
	discovery := &model.Discovery{Source: s.Name(), GeneratedAt: time.Now().UTC()}
	discovery.Warnings = append(discovery.Warnings, "Google Forms exposes no member directory; members phase will be empty")

	for _, formID := range s.formIDs {
		if _, err := s.client.Form(ctx, formID); err != nil {
			return nil, err
		}

		discovery.Templates++

		responses, err := s.client.Responses(ctx, formID)
		if err != nil {
			return nil, err
		}

		discovery.Instances += len(responses)
	}

	return discovery, nil
}

// Members returns nothing: a Forms token cannot list account users.
func (s *Source) Members(ctx context.Context) ([]model.Member, error) {
	s.logger.Info("Google Forms exposes no member directory, skipping")

	return nil, nil
}

// Templates transforms every configured form into a kickoff-form template.
func (s *Source) Templates(ctx context.Context) ([]model.Template, error) {
	templates := make([]model.Template, 0, len(s.formIDs))

	for _, formID := range s.formIDs {
		form, err := s.client.Form(ctx, formID)
		if err != nil {
			return nil, err
		}

		templates = append(templates, transformForm(*form))
	}

	return templates, nil
}

// Instances transforms every submission of every configured form.
func (s *Source) Instances(ctx context.Context) ([]model.Instance, error) {
	var instances []model.Instance

	for _, formID := range s.formIDs {
		form, err := s.client.Form(ctx, formID)
		if err != nil {
			return nil, err
		}

		responses, err := s.client.Responses(ctx, formID)
		if err != nil {
			return nil, err
		}

		for _, response := range responses {
			instances = append(instances, transformResponse(*form, response))
		}
	}

	return instances, nil
}
