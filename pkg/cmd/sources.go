// Package cmd wires the shared components the command-line binaries need:
// the checkpoint store, the event bus and the vendor source registry.
package cmd

import (
	"log/slog"

	"github.com/tallyfy/migrator/pkg/config"
	"github.com/tallyfy/migrator/pkg/source"
	"github.com/tallyfy/migrator/pkg/sources/asana"
	"github.com/tallyfy/migrator/pkg/sources/basecamp"
	"github.com/tallyfy/migrator/pkg/sources/clickup"
	"github.com/tallyfy/migrator/pkg/sources/googleforms"
	"github.com/tallyfy/migrator/pkg/sources/kissflow"
	"github.com/tallyfy/migrator/pkg/sources/monday"
	"github.com/tallyfy/migrator/pkg/sources/pipefy"
	"github.com/tallyfy/migrator/pkg/sources/processstreet"
	"github.com/tallyfy/migrator/pkg/sources/rocketlane"
	"github.com/tallyfy/migrator/pkg/sources/typeform"
)

// NewSourceRegistry registers a factory for every supported vendor. Each
// factory closes over its config section, so credentials are checked only
// when a connector is actually created.
func NewSourceRegistry(logger *slog.Logger, cfg *config.Config) *source.Registry {
	registry := source.NewRegistry(logger)
	sources := cfg.Sources

	registry.Register("asana", func(l *slog.Logger) (source.Source, error) {
		return asana.New(asana.Config{
			AccessToken: sources.Asana.AccessToken,
			BaseURL:     sources.Asana.BaseURL,
			Workspace:   sources.Asana.Workspace,
		}, l)
	})

	registry.Register("basecamp", func(l *slog.Logger) (source.Source, error) {
		return basecamp.New(basecamp.Config{
			AccessToken: sources.Basecamp.AccessToken,
			AccountID:   sources.Basecamp.AccountID,
			BaseURL:     sources.Basecamp.BaseURL,
			UserAgent:   sources.Basecamp.UserAgent,
		}, l)
	})

	registry.Register("clickup", func(l *slog.Logger) (source.Source, error) {
		return clickup.New(clickup.Config{
			AccessToken: sources.ClickUp.AccessToken,
			BaseURL:     sources.ClickUp.BaseURL,
			Team:        sources.ClickUp.Team,
		}, l)
	})

	registry.Register("monday", func(l *slog.Logger) (source.Source, error) {
		return monday.New(monday.Config{
			APIToken: sources.Monday.APIToken,
			BaseURL:  sources.Monday.BaseURL,
		}, l)
	})

	registry.Register("kissflow", func(l *slog.Logger) (source.Source, error) {
		return kissflow.New(kissflow.Config{
			AccessKeyID:     sources.Kissflow.AccessKeyID,
			AccessKeySecret: sources.Kissflow.AccessKeySecret,
			Subdomain:       sources.Kissflow.Subdomain,
			AccountID:       sources.Kissflow.AccountID,
			BaseURL:         sources.Kissflow.BaseURL,
		}, l)
	})

	registry.Register("pipefy", func(l *slog.Logger) (source.Source, error) {
		return pipefy.New(pipefy.Config{
			APIToken:     sources.Pipefy.APIToken,
			BaseURL:      sources.Pipefy.BaseURL,
			Organization: sources.Pipefy.Organization,
		}, l)
	})

	registry.Register("processstreet", func(l *slog.Logger) (source.Source, error) {
		return processstreet.New(processstreet.Config{
			APIKey:  sources.ProcessStreet.APIKey,
			BaseURL: sources.ProcessStreet.BaseURL,
		}, l)
	})

	registry.Register("typeform", func(l *slog.Logger) (source.Source, error) {
		return typeform.New(typeform.Config{
			AccessToken: sources.Typeform.AccessToken,
			BaseURL:     sources.Typeform.BaseURL,
		}, l)
	})

	registry.Register("rocketlane", func(l *slog.Logger) (source.Source, error) {
		return rocketlane.New(rocketlane.Config{
			APIKey:  sources.Rocketlane.APIKey,
			BaseURL: sources.Rocketlane.BaseURL,
		}, l)
	})

	registry.Register("googleforms", func(l *slog.Logger) (source.Source, error) {
		return googleforms.New(googleforms.Config{
			AccessToken: sources.GoogleForms.AccessToken,
			BaseURL:     sources.GoogleForms.BaseURL,
			FormIDs:     sources.GoogleForms.FormIDs,
		}, l)
	})

	return registry
}
