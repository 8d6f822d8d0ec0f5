package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/credentis/credentis/pkg/models"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/registry"
)

// Service covers workflow definition CRUD for the API layer. Saves are full
// overwrites; there is no partial patching of a definition.
type Service struct {
	store    persistence.WorkflowRepository
	registry *registry.Registry
	logger   *slog.Logger
}

func NewService(store persistence.WorkflowRepository, reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		registry: reg,
		logger:   logger.With("module", "workflow_service"),
	}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*models.WorkflowDefinition, error) {
	return s.store.Workflows(ctx, tenantID)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.WorkflowDefinition, error) {
	return s.store.WorkflowByID(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, workflow *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	s.warnUnknownActions(workflow)

	if err := s.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id string, workflow *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	existing, err := s.store.WorkflowByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	workflow.ID = id
	workflow.TenantID = tenantID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	s.warnUnknownActions(workflow)

	if err := s.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	return s.store.DeleteWorkflow(ctx, tenantID, id)
}

// Unknown action names are legal at save time (actions are resolved when a
// run reaches the step) but almost always a typo, so they get a warning.
func (s *Service) warnUnknownActions(workflow *models.WorkflowDefinition) {
	if s.registry == nil {
		return
	}

	for i, step := range workflow.Actions {
		if _, ok := s.registry.Get(step.Action); !ok {
			s.logger.Warn("Workflow references unregistered action",
				"workflow_id", workflow.ID, "step", i, "action", step.Action)
		}
	}
}
