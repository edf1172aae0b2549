package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/dispatcher"
	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/lifecycle"
)

// WorkflowService is the transactional boundary for engagement lifecycle
// transitions. It owns all I/O around the pure state machine: loading the
// context snapshot, committing the state change, appending the transition
// log, and notifying listeners. No other component writes current_state.
type WorkflowService interface {
	// AvailableActions returns every action currently performable by the
	// acting user, in rule-table order
	AvailableActions(ctx context.Context, engagementID int64, user entity.User) ([]lifecycle.Action, error)

	// BlockingRequirements returns every unmet precondition for an action
	BlockingRequirements(ctx context.Context, engagementID int64, action lifecycle.Action, user entity.User) ([]lifecycle.Requirement, error)

	// PerformAction evaluates and, if permitted, commits a transition.
	// Denials come back as an unsuccessful TransitionResult, not an error;
	// errors are reserved for collaborator and integrity failures.
	PerformAction(ctx context.Context, engagementID int64, action lifecycle.Action, user entity.User) (lifecycle.TransitionResult, error)

	// History returns the engagement's append-only transition trail
	History(ctx context.Context, engagementID int64) ([]*entity.TransitionLogEntry, error)
}

type workflowServiceImpl struct {
	engagementRepo port.EngagementRepository
	workpaperRepo  port.WorkpaperRepository
	logRepo        port.TransitionLogRepository
	dispatcher     dispatcher.Dispatcher
	logger         Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	engagementRepo port.EngagementRepository,
	workpaperRepo port.WorkpaperRepository,
	logRepo port.TransitionLogRepository,
	d dispatcher.Dispatcher,
	logger Logger,
) WorkflowService {
	return &workflowServiceImpl{
		engagementRepo: engagementRepo,
		workpaperRepo:  workpaperRepo,
		logRepo:        logRepo,
		dispatcher:     d,
		logger:         logger,
	}
}

// AvailableActions returns the actions currently permitted for the user
func (s *workflowServiceImpl) AvailableActions(ctx context.Context, engagementID int64, user entity.User) ([]lifecycle.Action, error) {
	machine, err := s.loadMachine(ctx, engagementID, user)
	if err != nil {
		return nil, err
	}
	return machine.AvailableActions(), nil
}

// BlockingRequirements returns every unmet precondition for the action
func (s *workflowServiceImpl) BlockingRequirements(ctx context.Context, engagementID int64, action lifecycle.Action, user entity.User) ([]lifecycle.Requirement, error) {
	machine, err := s.loadMachine(ctx, engagementID, user)
	if err != nil {
		return nil, err
	}
	return machine.BlockingRequirements(action)
}

// PerformAction evaluates the action against a fresh snapshot and commits
// the resulting state change. The engagement row's compare-and-swap is the
// concurrency guard: a stale snapshot surfaces as an unsuccessful result,
// and the caller must reload and retry from scratch.
func (s *workflowServiceImpl) PerformAction(ctx context.Context, engagementID int64, action lifecycle.Action, user entity.User) (lifecycle.TransitionResult, error) {
	machine, err := s.loadMachine(ctx, engagementID, user)
	if err != nil {
		return lifecycle.TransitionResult{}, err
	}

	fromState := machine.State()
	result := machine.Perform(action)
	if !result.Success {
		s.logger.Info("Transition denied",
			"engagement_id", engagementID,
			"action", action,
			"state", fromState,
			"reason", result.Error,
		)
		return result, nil
	}

	err = s.engagementRepo.UpdateState(ctx, engagementID, fromState.String(), result.NewState.String())
	if err == port.ErrConflict {
		return lifecycle.TransitionResult{
			Success: false,
			Code:    lifecycle.DenialConflict,
			Error:   "engagement state changed concurrently; reload and retry",
		}, nil
	}
	if err != nil {
		return lifecycle.TransitionResult{}, fmt.Errorf("update engagement state: %w", err)
	}

	performedAt := time.Now()
	if result.NewState == lifecycle.StateIssued {
		if err := s.engagementRepo.SetIssuedAt(ctx, engagementID, performedAt); err != nil {
			s.logger.Warn("Failed to stamp issued_at",
				"engagement_id", engagementID, "error", err)
		}
	}

	// The transition log is a best-effort audit trail, not a transactional
	// partner to the state change: the commit above stands even if the
	// append fails.
	entry := &entity.TransitionLogEntry{
		EntityType:  entity.EntityTypeEngagement,
		EntityID:    engagementID,
		FromState:   fromState.String(),
		ToState:     result.NewState.String(),
		Action:      action.String(),
		PerformedBy: user.ID,
		PerformedAt: performedAt,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.logger.Warn("Transition committed but audit log append failed",
			"engagement_id", engagementID,
			"action", action,
			"from", fromState,
			"to", result.NewState,
			"error", err,
		)
	}

	s.logger.Info("Transition performed",
		"engagement_id", engagementID,
		"action", action,
		"from", fromState,
		"to", result.NewState,
		"performed_by", user.ID,
	)

	if s.dispatcher != nil {
		evt := event.NewEvent(event.TypeStateChanged, engagementID, map[string]interface{}{
			"from_state":   fromState.String(),
			"to_state":     result.NewState.String(),
			"action":       action.String(),
			"performed_by": user.ID,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	return result, nil
}

// History returns the transition log for an engagement
func (s *workflowServiceImpl) History(ctx context.Context, engagementID int64) ([]*entity.TransitionLogEntry, error) {
	return s.logRepo.GetByEntity(ctx, entity.EntityTypeEngagement, engagementID)
}

// loadMachine assembles a fresh context snapshot and constructs the pure
// machine over it
func (s *workflowServiceImpl) loadMachine(ctx context.Context, engagementID int64, user entity.User) (*lifecycle.Machine, error) {
	eng, err := s.engagementRepo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("load engagement: %w", err)
	}
	if eng == nil {
		return nil, fmt.Errorf("engagement %d: %w", engagementID, port.ErrNotFound)
	}

	total, locked, err := s.workpaperRepo.CountByEngagement(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("count workpapers: %w", err)
	}

	snapshot := lifecycle.Context{
		EngagementID:        engagementID,
		CurrentState:        lifecycle.State(eng.CurrentState),
		UserID:              user.ID,
		UserRole:            user.Role,
		IsEngagementPartner: eng.PartnerUserID == user.ID,
		IsManager:           eng.ManagerUserID == user.ID,

		IndependenceConfirmed:  eng.Checklist.IndependenceConfirmed,
		ClientAccepted:         eng.Checklist.ClientAccepted,
		EngagementLetterSigned: eng.Checklist.EngagementLetterSigned,
		PlanningMemoApproved:   eng.Checklist.PlanningMemoApproved,
		RiskAssessmentComplete: eng.Checklist.RiskAssessmentComplete,
		MaterialitySet:         eng.Checklist.MaterialitySet,
		AllProceduresComplete:  eng.Checklist.AllProceduresComplete,
		ReviewNotesCleared:     eng.Checklist.ReviewNotesCleared,
		WrapUpComplete:         eng.Checklist.WrapUpComplete,
		EQCRComplete:           eng.Checklist.EQCRComplete,
		ReportApproved:         eng.Checklist.ReportApproved,

		// Engagement-level partner sign-off is derived, never stored: every
		// workpaper carries a partner sign-off, and there is at least one.
		PartnerSignoff: total > 0 && locked == total,
	}

	machine, err := lifecycle.NewMachine(snapshot)
	if err != nil {
		// Loaded state is outside the declared set: surface loudly rather
		// than guess around corrupt data.
		s.logger.Error("Engagement has invalid lifecycle state",
			"engagement_id", engagementID,
			"state", eng.CurrentState,
		)
		return nil, err
	}
	return machine, nil
}
