package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tallyfy/migrator/pkg/channels/gochannel"
	"github.com/tallyfy/migrator/pkg/channels/kafka"
	"github.com/tallyfy/migrator/pkg/eventbus"
)

// NewEventBus creates the migration event bus. Without brokers, events stay
// on an in-process channel; with brokers they flow through Kafka so external
// consumers can audit the run.
func NewEventBus(serviceName string, brokers []string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(brokers) > 0 {
		pub, sub, err := kafka.CreateChannel(wmLogger, serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka channel: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	}

	pub, sub, err := gochannel.CreateChannel(wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process channel: %w", err)
	}

	return eventbus.NewWatermillEventBus(pub, sub), nil
}
