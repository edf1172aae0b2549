package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/dispatcher"
	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/signoff"
)

// SignoffService is the transactional boundary for the workpaper sign-off
// chain: recording and revoking sign-offs, and maintaining the workpaper's
// derived review status and lock fields. It is the sole writer of those
// fields.
type SignoffService interface {
	CreateWorkpaper(ctx context.Context, engagementID int64, reference, title, content string) (*entity.Workpaper, error)
	GetWorkpaper(ctx context.Context, id int64) (*entity.Workpaper, error)
	ListWorkpapers(ctx context.Context, engagementID int64) ([]*entity.Workpaper, error)

	// UpdateContent edits a workpaper's title and content. Denied while the
	// workpaper is locked; revoke the partner sign-off first.
	UpdateContent(ctx context.Context, workpaperID int64, title, content string, user entity.User) error

	// GetStatus computes the chain position for the acting user
	GetStatus(ctx context.Context, workpaperID int64, user entity.User) (*signoff.Status, error)

	// CreateSignoff records the next sign-off in the chain
	CreateSignoff(ctx context.Context, workpaperID int64, sigType signoff.Type, user entity.User, comments, userAgent string) (*entity.WorkpaperSignoff, error)

	// RevokeSignoff removes a sign-off and recomputes the workpaper's
	// review status from the remaining rows. This is the only supported
	// way backward in the workflow model.
	RevokeSignoff(ctx context.Context, signoffID int64, user entity.User, reason string) error
}

type signoffServiceImpl struct {
	workpaperRepo port.WorkpaperRepository
	signoffRepo   port.SignoffRepository
	txManager     port.TransactionManager
	dispatcher    dispatcher.Dispatcher
	logger        Logger
}

// NewSignoffService creates a new SignoffService
func NewSignoffService(
	workpaperRepo port.WorkpaperRepository,
	signoffRepo port.SignoffRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	logger Logger,
) SignoffService {
	return &signoffServiceImpl{
		workpaperRepo: workpaperRepo,
		signoffRepo:   signoffRepo,
		txManager:     txManager,
		dispatcher:    d,
		logger:        logger,
	}
}

// CreateWorkpaper creates a new workpaper in draft status
func (s *signoffServiceImpl) CreateWorkpaper(ctx context.Context, engagementID int64, reference, title, content string) (*entity.Workpaper, error) {
	wp := &entity.Workpaper{
		EngagementID: engagementID,
		Reference:    reference,
		Title:        title,
		Content:      content,
		ReviewStatus: entity.ReviewStatusDraft,
	}
	if err := s.workpaperRepo.Create(ctx, wp); err != nil {
		s.logger.Error("Failed to create workpaper", "engagement_id", engagementID, "error", err)
		return nil, err
	}
	s.logger.Info("Workpaper created", "id", wp.ID, "engagement_id", engagementID, "reference", reference)
	return wp, nil
}

// GetWorkpaper retrieves a workpaper by ID
func (s *signoffServiceImpl) GetWorkpaper(ctx context.Context, id int64) (*entity.Workpaper, error) {
	wp, err := s.workpaperRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wp == nil {
		return nil, fmt.Errorf("workpaper %d: %w", id, port.ErrNotFound)
	}
	return wp, nil
}

// ListWorkpapers retrieves all workpapers for an engagement
func (s *signoffServiceImpl) ListWorkpapers(ctx context.Context, engagementID int64) ([]*entity.Workpaper, error) {
	return s.workpaperRepo.GetByEngagementID(ctx, engagementID)
}

// UpdateContent edits a workpaper unless it is locked. Edits after earlier
// sign-offs are allowed; the signature hash records what was actually
// signed, so a later edit is visible as a hash mismatch.
func (s *signoffServiceImpl) UpdateContent(ctx context.Context, workpaperID int64, title, content string, user entity.User) error {
	wp, err := s.GetWorkpaper(ctx, workpaperID)
	if err != nil {
		return err
	}
	if wp.ReviewStatus == entity.ReviewStatusLocked {
		return fmt.Errorf("%w: revoke the partner sign-off before editing", ErrWorkpaperLocked)
	}
	if err := s.workpaperRepo.UpdateContent(ctx, workpaperID, title, content); err != nil {
		s.logger.Error("Failed to update workpaper content", "id", workpaperID, "error", err)
		return err
	}
	s.logger.Info("Workpaper content updated", "id", workpaperID, "updated_by", user.ID)
	return nil
}

// GetStatus computes the derived sign-off status for the acting user
func (s *signoffServiceImpl) GetStatus(ctx context.Context, workpaperID int64, user entity.User) (*signoff.Status, error) {
	if _, err := s.GetWorkpaper(ctx, workpaperID); err != nil {
		return nil, err
	}
	chain, err := s.loadChain(ctx, workpaperID)
	if err != nil {
		return nil, err
	}
	st := chain.StatusFor(user.ID, signoff.Role(user.Role))
	return &st, nil
}

// CreateSignoff records a sign-off after checking order, authority, and
// self-review. The checks here are advisory under races: the uniqueness
// constraint on (workpaper, type) at the store is the final arbiter, and a
// conflict there comes back as port.ErrConflict.
func (s *signoffServiceImpl) CreateSignoff(ctx context.Context, workpaperID int64, sigType signoff.Type, user entity.User, comments, userAgent string) (*entity.WorkpaperSignoff, error) {
	wp, err := s.GetWorkpaper(ctx, workpaperID)
	if err != nil {
		return nil, err
	}

	if !sigType.IsValid() {
		return nil, fmt.Errorf("%w: unknown sign-off type %q", ErrAuthorizationDenied, sigType)
	}

	chain, err := s.loadChain(ctx, workpaperID)
	if err != nil {
		return nil, err
	}

	if chain.IsLocked() {
		return nil, fmt.Errorf("%w: partner sign-off already recorded", ErrWorkpaperLocked)
	}

	next, pending := chain.NextRequiredType()
	if !pending {
		return nil, fmt.Errorf("%w: chain is fully signed", ErrSignoffOutOfOrder)
	}
	if sigType != next {
		return nil, fmt.Errorf("%w: next required sign-off is %q, got %q", ErrSignoffOutOfOrder, next, sigType)
	}

	role := signoff.Role(user.Role)
	if !role.CanRecord(sigType) {
		return nil, fmt.Errorf("%w: role %q may not record a %q sign-off", ErrAuthorizationDenied, user.Role, sigType)
	}

	if chain.HasSignedBy(user.ID) {
		return nil, fmt.Errorf("%w: independence of review requires a different signer", ErrSelfReview)
	}

	now := time.Now()
	row := &entity.WorkpaperSignoff{
		WorkpaperID:   workpaperID,
		UserID:        user.ID,
		SignoffType:   sigType.String(),
		SignedAt:      now,
		Comments:      comments,
		SignatureHash: signatureHash(wp.Title, wp.Content),
		UserAgent:     userAgent,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.signoffRepo.Create(txCtx, row); err != nil {
			return err
		}

		status := reviewStatusFor(sigType)
		var lockedAt *time.Time
		var lockedBy string
		if sigType == signoff.TypePartner {
			lockedAt = &now
			lockedBy = user.ID
		}
		return s.workpaperRepo.UpdateReviewStatus(txCtx, workpaperID, status, lockedAt, lockedBy)
	})
	if err != nil {
		if err == port.ErrConflict {
			s.logger.Info("Sign-off lost race", "workpaper_id", workpaperID, "type", sigType, "user_id", user.ID)
			return nil, fmt.Errorf("sign-off for workpaper %d: %w", workpaperID, port.ErrConflict)
		}
		s.logger.Error("Failed to record sign-off", "workpaper_id", workpaperID, "type", sigType, "error", err)
		return nil, err
	}

	s.logger.Info("Sign-off recorded",
		"workpaper_id", workpaperID,
		"type", sigType,
		"signed_by", user.ID,
	)

	if s.dispatcher != nil {
		evt := event.NewWorkpaperEvent(event.TypeWorkpaperSigned, wp.EngagementID, workpaperID, map[string]interface{}{
			"signoff_type": sigType.String(),
			"signed_by":    user.ID,
		})
		s.dispatcher.DispatchAsync(ctx, evt)

		if sigType == signoff.TypePartner {
			locked := event.NewWorkpaperEvent(event.TypeWorkpaperLocked, wp.EngagementID, workpaperID, map[string]interface{}{
				"locked_by": user.ID,
			})
			s.dispatcher.DispatchAsync(ctx, locked)
		}
	}

	return row, nil
}

// RevokeSignoff deletes a sign-off row and recomputes the workpaper's
// review status from the rows that remain. Restricted to manager and
// partner roles. While a partner row survives the workpaper stays locked;
// only revoking the partner row itself releases the lock.
func (s *signoffServiceImpl) RevokeSignoff(ctx context.Context, signoffID int64, user entity.User, reason string) error {
	role := signoff.Role(user.Role)
	if !role.CanRevoke() {
		return fmt.Errorf("%w: role %q may not revoke sign-offs", ErrAuthorizationDenied, user.Role)
	}

	row, err := s.signoffRepo.GetByID(ctx, signoffID)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("sign-off %d: %w", signoffID, port.ErrNotFound)
	}

	wp, err := s.GetWorkpaper(ctx, row.WorkpaperID)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.signoffRepo.Delete(txCtx, signoffID); err != nil {
			return err
		}
		remaining, err := s.signoffRepo.GetByWorkpaperID(txCtx, row.WorkpaperID)
		if err != nil {
			return err
		}
		status, lockedAt, lockedBy := derivedReviewStatus(remaining, wp)
		return s.workpaperRepo.UpdateReviewStatus(txCtx, row.WorkpaperID, status, lockedAt, lockedBy)
	})
	if err != nil {
		s.logger.Error("Failed to revoke sign-off", "signoff_id", signoffID, "error", err)
		return err
	}

	s.logger.Info("Sign-off revoked",
		"signoff_id", signoffID,
		"workpaper_id", row.WorkpaperID,
		"type", row.SignoffType,
		"revoked_by", user.ID,
		"reason", reason,
	)

	if s.dispatcher != nil {
		evt := event.NewWorkpaperEvent(event.TypeSignoffRevoked, wp.EngagementID, row.WorkpaperID, map[string]interface{}{
			"signoff_type": row.SignoffType,
			"revoked_by":   user.ID,
			"reason":       reason,
		})
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	return nil
}

// loadChain builds the pure chain evaluator from the stored sign-off rows
func (s *signoffServiceImpl) loadChain(ctx context.Context, workpaperID int64) (*signoff.Chain, error) {
	rows, err := s.signoffRepo.GetByWorkpaperID(ctx, workpaperID)
	if err != nil {
		return nil, fmt.Errorf("load sign-offs: %w", err)
	}
	records := make([]signoff.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, signoff.Record{
			Type:   signoff.Type(r.SignoffType),
			UserID: r.UserID,
		})
	}
	chain, err := signoff.NewChain(records)
	if err != nil {
		// More than one row of the same type means the storage guarantee
		// was violated; treat the workpaper as corrupt.
		s.logger.Error("Workpaper sign-off chain failed integrity check",
			"workpaper_id", workpaperID, "error", err)
		return nil, err
	}
	return chain, nil
}

// signatureHash fixes the evidence of what was signed: the workpaper's
// title and content at the moment of signing. A later edit intentionally
// breaks the correspondence; the hash is not a live integrity check.
func signatureHash(title, content string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// derivedReviewStatus recomputes the workpaper's review status from the
// sign-off rows that remain after a revocation. The highest remaining type
// in hierarchy order determines the status; the lock fields survive as long
// as the partner row does.
func derivedReviewStatus(rows []*entity.WorkpaperSignoff, wp *entity.Workpaper) (string, *time.Time, string) {
	present := make(map[signoff.Type]bool, len(rows))
	for _, r := range rows {
		present[signoff.Type(r.SignoffType)] = true
	}

	status := entity.ReviewStatusDraft
	for _, t := range signoff.Hierarchy {
		if present[t] {
			status = reviewStatusFor(t)
		}
	}

	if present[signoff.TypePartner] {
		return status, wp.LockedAt, wp.LockedBy
	}
	return status, nil, ""
}

// reviewStatusFor maps a recorded sign-off type to the workpaper's derived
// review status
func reviewStatusFor(t signoff.Type) string {
	switch t {
	case signoff.TypePreparer:
		return entity.ReviewStatusPendingReview
	case signoff.TypeReviewer:
		return entity.ReviewStatusInReview
	case signoff.TypeManager:
		return entity.ReviewStatusApproved
	case signoff.TypePartner:
		return entity.ReviewStatusLocked
	default:
		return entity.ReviewStatusDraft
	}
}
