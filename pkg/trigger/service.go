// Package trigger maps external stimuli (webhook calls, cron schedules,
// in-process events) to workflow executions.
package trigger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/events"
	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/path"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/workflow"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body when
// the trigger is configured with a secret.
const SignatureHeader = "X-Webhook-Signature"

// WorkflowExecutor is the slice of the executor the trigger service needs.
type WorkflowExecutor interface {
	Execute(ctx context.Context, workflowID, tenantID string, input map[string]any, triggerID string) (*workflow.Result, error)
}

// WebhookResult is returned to the synchronous webhook caller, which blocks
// for the full pipeline.
type WebhookResult struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	TriggerID string `json:"trigger_id"`
}

// EmitResult is returned to an event emitter immediately, before any
// dispatched workflow has run.
type EmitResult struct {
	TriggeredCount int    `json:"triggered_count"`
	Message        string `json:"message"`
}

// Service owns the in-memory trigger index. scheduledJobs and
// eventListeners are derived caches over the persisted trigger table,
// rebuilt by Initialize; until then triggers must not be trusted.
type Service struct {
	store    persistence.TriggerRepository
	executor WorkflowExecutor
	bus      eventbus.Publisher
	logger   *slog.Logger

	cron *cron.Cron

	mu             sync.RWMutex
	scheduledJobs  map[string]cron.EntryID
	eventListeners map[string]map[string]struct{}
}

func NewService(store persistence.TriggerRepository, executor WorkflowExecutor, bus eventbus.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		executor: executor,
		bus:      bus,
		logger:   logger.With("module", "trigger_service"),
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		scheduledJobs:  make(map[string]cron.EntryID),
		eventListeners: make(map[string]map[string]struct{}),
	}
}

// Initialize rebuilds the in-memory index from all persisted active
// triggers and starts the scheduler. Must run before any dispatch after a
// process restart.
func (s *Service) Initialize(ctx context.Context) error {
	triggers, err := s.store.ActiveTriggers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active triggers: %w", err)
	}

	for _, trigger := range triggers {
		if err := s.wire(trigger); err != nil {
			s.logger.Error("Failed to wire trigger", "trigger_id", trigger.ID, "error", err)
		}
	}

	s.cron.Start()
	s.logger.Info("Trigger service initialized", "active_triggers", len(triggers))

	return nil
}

// Close stops the scheduler and waits for in-flight cron jobs.
func (s *Service) Close() {
	<-s.cron.Stop().Done()
}

// CreateTrigger persists the trigger and, when active, wires it into the
// in-memory index immediately. Webhook triggers need no wiring: they are
// resolved lazily by id on each HTTP call.
func (s *Service) CreateTrigger(ctx context.Context, trigger *models.Trigger) (*models.Trigger, error) {
	if trigger.ID == "" {
		trigger.ID = uuid.New().String()
	}

	if err := s.validate(trigger); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trigger.CreatedAt = now
	trigger.UpdatedAt = now

	if err := s.store.SaveTrigger(ctx, trigger); err != nil {
		return nil, err
	}

	if trigger.IsActive {
		if err := s.wire(trigger); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Created trigger",
		"trigger_id", trigger.ID, "type", trigger.Type, "workflow_id", trigger.WorkflowID, "active", trigger.IsActive)

	return trigger, nil
}

// SetActive flips a trigger's active flag, keeping the persisted row and
// the in-memory index consistent.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	trigger, err := s.store.TriggerByID(ctx, id)
	if err != nil {
		return err
	}

	// Already in the requested state. Re-wiring an active schedule trigger
	// would register a second cron entry for the same trigger.
	if trigger.IsActive == active {
		return nil
	}

	if err := s.store.SetTriggerActive(ctx, id, active); err != nil {
		return err
	}

	trigger.IsActive = active

	if active {
		return s.wire(trigger)
	}

	s.unwire(trigger)

	return nil
}

// Delete removes the trigger row and any in-memory wiring.
func (s *Service) Delete(ctx context.Context, id string) error {
	trigger, err := s.store.TriggerByID(ctx, id)
	if err != nil {
		return err
	}

	s.unwire(trigger)

	return s.store.DeleteTrigger(ctx, id)
}

func (s *Service) Triggers(ctx context.Context, tenantID string) ([]*models.Trigger, error) {
	return s.store.Triggers(ctx, tenantID)
}

func (s *Service) Trigger(ctx context.Context, id string) (*models.Trigger, error) {
	return s.store.TriggerByID(ctx, id)
}

// HandleWebhook validates and synchronously executes a webhook trigger.
// The caller blocks for the full pipeline, including third-party calls.
func (s *Service) HandleWebhook(ctx context.Context, triggerID string, payload map[string]any, headers map[string]string, rawBody []byte) (*WebhookResult, error) {
	trigger, err := s.store.TriggerByID(ctx, triggerID)
	if err != nil {
		return nil, err
	}

	if !trigger.IsActive {
		return nil, fmt.Errorf("trigger %s: %w", triggerID, ErrTriggerInactive)
	}

	if trigger.Type != models.TriggerTypeWebhook {
		return nil, fmt.Errorf("trigger %s has type %s: %w", triggerID, trigger.Type, ErrTriggerWrongType)
	}

	if err := verifySignature(trigger, headers, rawBody); err != nil {
		return nil, err
	}

	if err := checkRequiredFields(trigger, payload); err != nil {
		return nil, err
	}

	input, err := mapInput(trigger, payload)
	if err != nil {
		return nil, err
	}

	s.publishFired(ctx, trigger, "", "")

	result, err := s.executor.Execute(ctx, trigger.WorkflowID, trigger.TenantID, input, trigger.ID)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, trigger.ID)

	return &WebhookResult{
		RunID:     result.RunID,
		Status:    string(result.Status),
		TriggerID: trigger.ID,
	}, nil
}

// EmitEvent fans out to all active triggers listening on eventType whose
// source filter matches. Each matching workflow execution is
// fire-and-forget: the call returns the match count without waiting, and
// execution failures are logged and published on the bus, never surfaced to
// the emitter. No queue, no retry, no durability across a crash.
func (s *Service) EmitEvent(ctx context.Context, eventType string, data map[string]any, source string) (*EmitResult, error) {
	s.mu.RLock()
	listenerIDs := make([]string, 0, len(s.eventListeners[eventType]))
	for id := range s.eventListeners[eventType] {
		listenerIDs = append(listenerIDs, id)
	}
	s.mu.RUnlock()

	triggered := 0

	for _, id := range listenerIDs {
		trigger, err := s.store.TriggerByID(ctx, id)
		if err != nil {
			s.logger.Error("Listener refers to missing trigger", "trigger_id", id, "error", err)

			continue
		}

		if !trigger.IsActive {
			continue
		}

		if filter, _ := trigger.Config[models.TriggerConfigSourceFilter].(string); filter != "" && filter != source {
			continue
		}

		input, err := mapInput(trigger, data)
		if err != nil {
			s.logger.Error("Event input mapping failed", "trigger_id", id, "error", err)

			continue
		}

		input["eventType"] = eventType
		if source != "" {
			input["source"] = source
		}

		triggered++

		s.publishFired(ctx, trigger, eventType, source)
		go s.dispatchAsync(trigger, input)
	}

	return &EmitResult{
		TriggeredCount: triggered,
		Message:        fmt.Sprintf("dispatched %d trigger(s) for event %s", triggered, eventType),
	}, nil
}

// dispatchAsync runs a workflow detached from its initiator. The initiator
// never learns the outcome; failure visibility is logs and the RunFailed
// bus event published by the executor.
func (s *Service) dispatchAsync(trigger *models.Trigger, input map[string]any) {
	ctx := context.Background()

	if _, err := s.executor.Execute(ctx, trigger.WorkflowID, trigger.TenantID, input, trigger.ID); err != nil {
		s.logger.Error("Async trigger execution failed",
			"trigger_id", trigger.ID, "workflow_id", trigger.WorkflowID, "error", err)

		return
	}

	s.touch(ctx, trigger.ID)
}

// wire adds an active trigger to the in-memory index: a cron entry for
// schedule triggers, a listener registration for event triggers. Webhook
// triggers need none.
func (s *Service) wire(trigger *models.Trigger) error {
	switch trigger.Type {
	case models.TriggerTypeSchedule:
		cronExpr, _ := trigger.Config[models.TriggerConfigCron].(string)

		t := trigger
		entryID, err := s.cron.AddFunc(cronExpr, func() { s.runScheduled(t) })
		if err != nil {
			return fmt.Errorf("failed to schedule trigger %s: %w", trigger.ID, err)
		}

		s.mu.Lock()
		if old, ok := s.scheduledJobs[trigger.ID]; ok {
			s.cron.Remove(old)
		}
		s.scheduledJobs[trigger.ID] = entryID
		s.mu.Unlock()

	case models.TriggerTypeEvent:
		eventType, _ := trigger.Config[models.TriggerConfigEventType].(string)

		s.mu.Lock()
		if s.eventListeners[eventType] == nil {
			s.eventListeners[eventType] = make(map[string]struct{})
		}
		s.eventListeners[eventType][trigger.ID] = struct{}{}
		s.mu.Unlock()

	case models.TriggerTypeWebhook:
	}

	return nil
}

// unwire removes the trigger from the index. An emptied listener set stays
// allocated, merely empty.
func (s *Service) unwire(trigger *models.Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.scheduledJobs[trigger.ID]; ok {
		s.cron.Remove(entryID)
		delete(s.scheduledJobs, trigger.ID)
	}

	for _, listeners := range s.eventListeners {
		delete(listeners, trigger.ID)
	}
}

func (s *Service) runScheduled(trigger *models.Trigger) {
	input := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if static, ok := trigger.Config[models.TriggerConfigInput].(map[string]any); ok {
		for k, v := range static {
			input[k] = v
		}
	}

	s.publishFired(context.Background(), trigger, "", "")
	go s.dispatchAsync(trigger, input)
}

func (s *Service) validate(trigger *models.Trigger) error {
	switch trigger.Type {
	case models.TriggerTypeSchedule:
		cronExpr, _ := trigger.Config[models.TriggerConfigCron].(string)
		if cronExpr == "" {
			return fmt.Errorf("schedule trigger %s requires config.cron", trigger.ID)
		}

		if _, err := cron.ParseStandard(cronExpr); err != nil {
			return fmt.Errorf("invalid cron expression for trigger %s: %w", trigger.ID, err)
		}
	case models.TriggerTypeEvent:
		if eventType, _ := trigger.Config[models.TriggerConfigEventType].(string); eventType == "" {
			return fmt.Errorf("event trigger %s requires config.eventType", trigger.ID)
		}
	case models.TriggerTypeWebhook:
	default:
		return fmt.Errorf("unknown trigger type %q", trigger.Type)
	}

	return nil
}

func (s *Service) touch(ctx context.Context, id string) {
	if err := s.store.TouchTrigger(ctx, id, time.Now().UTC()); err != nil {
		s.logger.Error("Failed to update last_triggered_at", "trigger_id", id, "error", err)
	}
}

func (s *Service) publishFired(ctx context.Context, trigger *models.Trigger, eventName, source string) {
	if s.bus == nil {
		return
	}

	event := events.TriggerFired{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.TriggerFiredEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: trigger.WorkflowID,
			TenantID:   trigger.TenantID,
		},
		TriggerID:   trigger.ID,
		TriggerType: string(trigger.Type),
		EventName:   eventName,
		Source:      source,
	}

	if err := s.bus.Publish(ctx, string(events.TriggerFiredEvent), event); err != nil {
		s.logger.Error("Failed to publish trigger event", "trigger_id", trigger.ID, "error", err)
	}
}

func verifySignature(trigger *models.Trigger, headers map[string]string, rawBody []byte) error {
	secret, _ := trigger.Config[models.TriggerConfigSecret].(string)
	if secret == "" {
		return nil
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(headers[SignatureHeader])) {
		return fmt.Errorf("trigger %s: %w", trigger.ID, ErrBadSignature)
	}

	return nil
}

func checkRequiredFields(trigger *models.Trigger, payload map[string]any) error {
	var missing []string

	for _, field := range requiredFields(trigger.Config) {
		if _, present := payload[field]; !present {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	return nil
}

// requiredFields reads config.requiredFields as either []string (set in
// code) or []any (the shape a JSON round trip produces).
func requiredFields(config map[string]any) []string {
	switch raw := config[models.TriggerConfigRequiredFields].(type) {
	case []string:
		return raw
	case []any:
		fields := make([]string, 0, len(raw))
		for _, v := range raw {
			if field, ok := v.(string); ok {
				fields = append(fields, field)
			}
		}

		return fields
	default:
		return nil
	}
}

// mapInput applies the trigger's dotted-path projection when configured and
// passes the payload through unmapped otherwise.
func mapInput(trigger *models.Trigger, payload map[string]any) (map[string]any, error) {
	rawMapping, ok := trigger.Config[models.TriggerConfigInputMapping].(map[string]any)
	if !ok || len(rawMapping) == 0 {
		out := make(map[string]any, len(payload))
		for k, v := range payload {
			out[k] = v
		}

		return out, nil
	}

	mapping, err := path.ParseMapping(rawMapping)
	if err != nil {
		return nil, fmt.Errorf("trigger %s input mapping: %w", trigger.ID, err)
	}

	return mapping.Project(payload), nil
}
