package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module consumes task events and serves the resulting activity feed.
type Module struct {
	feed   *Feed
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new activity module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		feed:   NewFeed(DefaultMaxEntries),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// RegisterEventConsumers subscribes to every task event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskToggledV1, m.handleTaskToggled, m); err != nil {
		return fmt.Errorf("failed to register TaskToggled consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated.v1", "TaskUpdated.v1", "TaskToggled.v1", "TaskDeleted.v1"})
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeCreated,
		TaskID:    event.TaskID,
		Message:   fmt.Sprintf("Task %q created with %s priority", event.Title, event.Priority),
		Timestamp: event.CreatedAt,
	})
	m.logger.Debug("Recorded task creation", "id", event.TaskID)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeUpdated,
		TaskID:    event.TaskID,
		Message:   fmt.Sprintf("Task %q updated (%s)", event.Title, strings.Join(event.Fields, ", ")),
		Timestamp: event.UpdatedAt,
	})
	m.logger.Debug("Recorded task update", "id", event.TaskID)
	return nil
}

func (m *Module) handleTaskToggled(_ context.Context, event events.TaskToggledEvent, _ *mono.Msg) error {
	state := "reopened"
	if event.Completed {
		state = "completed"
	}
	m.feed.Record(Entry{
		Type:      TypeToggled,
		TaskID:    event.TaskID,
		Message:   fmt.Sprintf("Task %q %s", event.Title, state),
		Timestamp: event.ToggledAt,
	})
	m.logger.Debug("Recorded task toggle", "id", event.TaskID, "completed", event.Completed)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Type:      TypeDeleted,
		TaskID:    event.TaskID,
		Message:   fmt.Sprintf("Task %d deleted", event.TaskID),
		Timestamp: event.DeletedAt,
	})
	m.logger.Debug("Recorded task deletion", "id", event.TaskID)
	return nil
}

// RegisterServices registers the recent-activity service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}

	m.logger.Info("Registered activity services", "services", []string{"recent-activity"})
	return nil
}

func (m *Module) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	entries := m.feed.Recent(req.Limit)
	return RecentActivityResponse{Entries: entries, Total: len(entries)}, nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started", "maxEntries", m.feed.maxEntries)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped", "entries", m.feed.Len())
	return nil
}
