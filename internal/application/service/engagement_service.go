package service

import (
	"context"
	"fmt"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/dispatcher"
	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/lifecycle"
)

// CreateEngagementParams holds the fields required to open an engagement
type CreateEngagementParams struct {
	ClientName    string
	Title         string
	PeriodEnd     string
	PartnerUserID string
	ManagerUserID string
}

// EngagementService manages engagement records and their compliance
// checklist. It never touches current_state beyond the initial draft; all
// transitions go through the WorkflowService.
type EngagementService interface {
	Create(ctx context.Context, params CreateEngagementParams) (*entity.Engagement, error)
	Get(ctx context.Context, id int64) (*entity.Engagement, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Engagement, error)

	// UpdateChecklist replaces the persisted compliance flags that feed the
	// state machine's precondition context
	UpdateChecklist(ctx context.Context, id int64, checklist entity.Checklist) error
}

type engagementServiceImpl struct {
	engagementRepo port.EngagementRepository
	dispatcher     dispatcher.Dispatcher
	logger         Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	engagementRepo port.EngagementRepository,
	d dispatcher.Dispatcher,
	logger Logger,
) EngagementService {
	return &engagementServiceImpl{
		engagementRepo: engagementRepo,
		dispatcher:     d,
		logger:         logger,
	}
}

// Create opens a new engagement in draft state with an empty checklist
func (s *engagementServiceImpl) Create(ctx context.Context, params CreateEngagementParams) (*entity.Engagement, error) {
	if params.ClientName == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if params.PartnerUserID == "" {
		return nil, fmt.Errorf("engagement partner is required")
	}

	eng := &entity.Engagement{
		ClientName:    params.ClientName,
		Title:         params.Title,
		PeriodEnd:     params.PeriodEnd,
		CurrentState:  lifecycle.StateDraft.String(),
		PartnerUserID: params.PartnerUserID,
		ManagerUserID: params.ManagerUserID,
	}

	if err := s.engagementRepo.Create(ctx, eng); err != nil {
		s.logger.Error("Failed to create engagement", "client", params.ClientName, "error", err)
		return nil, err
	}

	s.logger.Info("Engagement created",
		"id", eng.ID,
		"client", eng.ClientName,
		"partner", eng.PartnerUserID,
	)

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeEngagementCreated, eng.ID, map[string]interface{}{
			"client_name": eng.ClientName,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	return eng, nil
}

// Get retrieves an engagement by ID
func (s *engagementServiceImpl) Get(ctx context.Context, id int64) (*entity.Engagement, error) {
	eng, err := s.engagementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eng == nil {
		return nil, fmt.Errorf("engagement %d: %w", id, port.ErrNotFound)
	}
	return eng, nil
}

// List retrieves a paginated list of engagements
func (s *engagementServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.Engagement, error) {
	return s.engagementRepo.List(ctx, limit, offset)
}

// UpdateChecklist replaces the engagement's compliance flags
func (s *engagementServiceImpl) UpdateChecklist(ctx context.Context, id int64, checklist entity.Checklist) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.engagementRepo.UpdateChecklist(ctx, id, &checklist); err != nil {
		s.logger.Error("Failed to update checklist", "id", id, "error", err)
		return err
	}
	s.logger.Info("Checklist updated", "id", id)
	return nil
}
