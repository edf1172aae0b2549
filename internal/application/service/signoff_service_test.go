package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Obsidian-Corp/Audit-sub005/internal/application/port"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/entity"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/signoff"
)

func signoffRows(rows ...*entity.WorkpaperSignoff) func(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error) {
	return func(ctx context.Context, workpaperID int64) ([]*entity.WorkpaperSignoff, error) {
		return rows, nil
	}
}

func row(id int64, typ, userID string) *entity.WorkpaperSignoff {
	return &entity.WorkpaperSignoff{ID: id, WorkpaperID: 1, UserID: userID, SignoffType: typ}
}

func newSignoffService(wpRepo *mockWorkpaperRepo, sRepo *mockSignoffRepo, d *mockDispatcher) SignoffService {
	return NewSignoffService(wpRepo, sRepo, &mockTxManager{}, d, &mockLogger{})
}

func TestSignoffService_CreateSignoff_Preparer(t *testing.T) {
	var savedStatus string
	wpRepo := &mockWorkpaperRepo{
		updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
			savedStatus = status
			require.Nil(t, lockedAt, "only a partner sign-off locks the workpaper")
			return nil
		},
	}
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows()}
	d := &mockDispatcher{}
	svc := newSignoffService(wpRepo, sRepo, d)

	user := entity.User{ID: "staff-1", Role: "staff"}
	rec, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePreparer, user, "initial prep", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, "staff-1", rec.UserID)
	assert.Equal(t, "preparer", rec.SignoffType)
	assert.Equal(t, "initial prep", rec.Comments)
	assert.False(t, rec.SignedAt.IsZero())
	assert.Equal(t, entity.ReviewStatusPendingReview, savedStatus)

	events := d.dispatched()
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeWorkpaperSigned, events[0].Type)
}

func TestSignoffService_CreateSignoff_ReviewStatusMapping(t *testing.T) {
	tests := []struct {
		sigType    signoff.Type
		role       string
		userID     string
		existing   []*entity.WorkpaperSignoff
		wantStatus string
	}{
		{signoff.TypePreparer, "staff", "u1", nil, entity.ReviewStatusPendingReview},
		{signoff.TypeReviewer, "senior", "u2",
			[]*entity.WorkpaperSignoff{row(1, "preparer", "u1")},
			entity.ReviewStatusInReview},
		{signoff.TypeManager, "manager", "u3",
			[]*entity.WorkpaperSignoff{row(1, "preparer", "u1"), row(2, "reviewer", "u2")},
			entity.ReviewStatusApproved},
		{signoff.TypePartner, "partner", "u4",
			[]*entity.WorkpaperSignoff{row(1, "preparer", "u1"), row(2, "reviewer", "u2"), row(3, "manager", "u3")},
			entity.ReviewStatusLocked},
	}

	for _, tt := range tests {
		t.Run(string(tt.sigType), func(t *testing.T) {
			var savedStatus string
			wpRepo := &mockWorkpaperRepo{
				updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
					savedStatus = status
					return nil
				},
			}
			sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(tt.existing...)}
			svc := newSignoffService(wpRepo, sRepo, &mockDispatcher{})

			user := entity.User{ID: tt.userID, Role: tt.role}
			_, err := svc.CreateSignoff(context.Background(), 1, tt.sigType, user, "", "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, savedStatus)
		})
	}
}

func TestSignoffService_CreateSignoff_PartnerLocks(t *testing.T) {
	var gotLockedAt *time.Time
	var gotLockedBy string
	wpRepo := &mockWorkpaperRepo{
		updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
			gotLockedAt, gotLockedBy = lockedAt, lockedBy
			return nil
		},
	}
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(
		row(1, "preparer", "u1"), row(2, "reviewer", "u2"), row(3, "manager", "u3"),
	)}
	d := &mockDispatcher{}
	svc := newSignoffService(wpRepo, sRepo, d)

	partner := entity.User{ID: "partner-1", Role: "partner"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePartner, partner, "", "")
	require.NoError(t, err)

	require.NotNil(t, gotLockedAt)
	assert.Equal(t, "partner-1", gotLockedBy)

	events := d.dispatched()
	require.Len(t, events, 2, "partner sign-off emits both signed and locked events")
	assert.Equal(t, event.TypeWorkpaperSigned, events[0].Type)
	assert.Equal(t, event.TypeWorkpaperLocked, events[1].Type)
}

func TestSignoffService_CreateSignoff_OutOfOrder(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows()}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	// Reviewer sign-off on an unsigned workpaper skips the preparer step.
	user := entity.User{ID: "senior-1", Role: "senior"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypeReviewer, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignoffOutOfOrder)
}

func TestSignoffService_CreateSignoff_InsufficientRole(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(row(1, "preparer", "u1"))}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	user := entity.User{ID: "staff-2", Role: "staff"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypeReviewer, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
}

func TestSignoffService_CreateSignoff_UnknownRoleFailsClosed(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows()}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	user := entity.User{ID: "u1", Role: "contractor"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePreparer, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
}

func TestSignoffService_CreateSignoff_SelfReview(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(row(1, "preparer", "senior-1"))}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	user := entity.User{ID: "senior-1", Role: "senior"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypeReviewer, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSelfReview)
}

func TestSignoffService_CreateSignoff_LockedWorkpaper(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(
		row(1, "preparer", "u1"), row(2, "reviewer", "u2"),
		row(3, "manager", "u3"), row(4, "partner", "u4"),
	)}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	user := entity.User{ID: "partner-2", Role: "partner"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePartner, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkpaperLocked)
}

// A lost race surfaces as a conflict from the store even though the
// in-memory checks passed.
func TestSignoffService_CreateSignoff_StoreConflict(t *testing.T) {
	sRepo := &mockSignoffRepo{
		getByWorkpaperIDFunc: signoffRows(),
		createFunc: func(ctx context.Context, s *entity.WorkpaperSignoff) error {
			return port.ErrConflict
		},
	}
	d := &mockDispatcher{}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, d)

	user := entity.User{ID: "staff-1", Role: "staff"}
	_, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePreparer, user, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrConflict)
	assert.Empty(t, d.dispatched(), "no event for a sign-off that did not commit")
}

func TestSignoffService_CreateSignoff_SignatureHash(t *testing.T) {
	wpRepo := &mockWorkpaperRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Workpaper, error) {
			return &entity.Workpaper{
				ID: id, EngagementID: 1,
				Title:        "Revenue testing",
				Content:      "Sampled 40 invoices",
				ReviewStatus: entity.ReviewStatusDraft,
			}, nil
		},
	}
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows()}
	svc := newSignoffService(wpRepo, sRepo, &mockDispatcher{})

	user := entity.User{ID: "staff-1", Role: "staff"}
	rec, err := svc.CreateSignoff(context.Background(), 1, signoff.TypePreparer, user, "", "")
	require.NoError(t, err)

	h := sha256.New()
	h.Write([]byte("Revenue testing"))
	h.Write([]byte{0})
	h.Write([]byte("Sampled 40 invoices"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), rec.SignatureHash)
}

func TestSignoffService_RevokeSignoff(t *testing.T) {
	t.Run("revoking the only sign-off resets the workpaper to draft", func(t *testing.T) {
		var savedStatus string
		var gotLockedAt *time.Time
		wpRepo := &mockWorkpaperRepo{
			updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
				savedStatus, gotLockedAt = status, lockedAt
				return nil
			},
		}
		deleted := false
		sRepo := &mockSignoffRepo{
			deleteFunc: func(ctx context.Context, id int64) error {
				deleted = true
				return nil
			},
		}
		d := &mockDispatcher{}
		svc := newSignoffService(wpRepo, sRepo, d)

		user := entity.User{ID: "manager-1", Role: "manager"}
		err := svc.RevokeSignoff(context.Background(), 1, user, "content error found")
		require.NoError(t, err)

		assert.True(t, deleted)
		assert.Equal(t, entity.ReviewStatusDraft, savedStatus)
		assert.Nil(t, gotLockedAt, "revocation clears the lock")

		events := d.dispatched()
		require.Len(t, events, 1)
		assert.Equal(t, event.TypeSignoffRevoked, events[0].Type)
		assert.Equal(t, "content error found", events[0].GetPayloadString("reason"))
	})

	t.Run("revoking a lower sign-off keeps the partner lock", func(t *testing.T) {
		lockTime := time.Now()
		wp := &entity.Workpaper{
			ID:           1,
			EngagementID: 1,
			Title:        "Cash testing",
			Content:      "Tested bank reconciliations",
			ReviewStatus: entity.ReviewStatusLocked,
			LockedAt:     &lockTime,
			LockedBy:     "partner-9",
		}
		wpRepo := &mockWorkpaperRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.Workpaper, error) {
				return wp, nil
			},
			updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
				wp.ReviewStatus = status
				wp.LockedAt = lockedAt
				wp.LockedBy = lockedBy
				return nil
			},
		}
		sRepo := &mockSignoffRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error) {
				return row(id, "preparer", "u1"), nil
			},
			getByWorkpaperIDFunc: signoffRows(
				row(2, "reviewer", "u2"),
				row(3, "manager", "u3"),
				row(4, "partner", "partner-9"),
			),
		}
		svc := newSignoffService(wpRepo, sRepo, &mockDispatcher{})

		manager := entity.User{ID: "manager-1", Role: "manager"}
		err := svc.RevokeSignoff(context.Background(), 10, manager, "preparer step redone")
		require.NoError(t, err)

		assert.Equal(t, entity.ReviewStatusLocked, wp.ReviewStatus)
		require.NotNil(t, wp.LockedAt, "the lock survives until the partner row itself is revoked")
		assert.Equal(t, "partner-9", wp.LockedBy)

		err = svc.UpdateContent(context.Background(), 1, "New title", "New content", manager)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrWorkpaperLocked)
	})

	t.Run("revoking the partner sign-off releases the lock", func(t *testing.T) {
		lockTime := time.Now()
		wp := &entity.Workpaper{
			ID:           1,
			EngagementID: 1,
			ReviewStatus: entity.ReviewStatusLocked,
			LockedAt:     &lockTime,
			LockedBy:     "partner-9",
		}
		wpRepo := &mockWorkpaperRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.Workpaper, error) {
				return wp, nil
			},
			updateReviewStatusFunc: func(ctx context.Context, id int64, status string, lockedAt *time.Time, lockedBy string) error {
				wp.ReviewStatus = status
				wp.LockedAt = lockedAt
				wp.LockedBy = lockedBy
				return nil
			},
		}
		sRepo := &mockSignoffRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error) {
				return row(id, "partner", "partner-9"), nil
			},
			getByWorkpaperIDFunc: signoffRows(
				row(1, "preparer", "u1"),
				row(2, "reviewer", "u2"),
				row(3, "manager", "u3"),
			),
		}
		svc := newSignoffService(wpRepo, sRepo, &mockDispatcher{})

		partner := entity.User{ID: "partner-9", Role: "partner"}
		err := svc.RevokeSignoff(context.Background(), 4, partner, "late adjustment required")
		require.NoError(t, err)

		assert.Equal(t, entity.ReviewStatusApproved, wp.ReviewStatus,
			"status falls back to the highest remaining sign-off")
		assert.Nil(t, wp.LockedAt)
		assert.Empty(t, wp.LockedBy)

		err = svc.UpdateContent(context.Background(), 1, "New title", "New content", partner)
		require.NoError(t, err, "editing reopens once the partner row is gone")
	})

	t.Run("staff may not revoke", func(t *testing.T) {
		svc := newSignoffService(&mockWorkpaperRepo{}, &mockSignoffRepo{}, &mockDispatcher{})

		user := entity.User{ID: "staff-1", Role: "staff"}
		err := svc.RevokeSignoff(context.Background(), 1, user, "oops")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuthorizationDenied)
	})

	t.Run("missing sign-off", func(t *testing.T) {
		sRepo := &mockSignoffRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkpaperSignoff, error) {
				return nil, nil
			},
		}
		svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

		user := entity.User{ID: "partner-1", Role: "partner"}
		err := svc.RevokeSignoff(context.Background(), 404, user, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}

func TestSignoffService_UpdateContent_DeniedWhileLocked(t *testing.T) {
	wpRepo := &mockWorkpaperRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Workpaper, error) {
			return &entity.Workpaper{ID: id, ReviewStatus: entity.ReviewStatusLocked}, nil
		},
	}
	svc := newSignoffService(wpRepo, &mockSignoffRepo{}, &mockDispatcher{})

	user := entity.User{ID: "manager-1", Role: "manager"}
	err := svc.UpdateContent(context.Background(), 1, "New title", "New content", user)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkpaperLocked)
}

func TestSignoffService_GetStatus(t *testing.T) {
	sRepo := &mockSignoffRepo{getByWorkpaperIDFunc: signoffRows(row(1, "preparer", "u1"))}
	svc := newSignoffService(&mockWorkpaperRepo{}, sRepo, &mockDispatcher{})

	st, err := svc.GetStatus(context.Background(), 1, entity.User{ID: "senior-1", Role: "senior"})
	require.NoError(t, err)
	assert.True(t, st.CanSign)
	require.NotNil(t, st.NextRequiredType)
	assert.Equal(t, signoff.TypeReviewer, *st.NextRequiredType)
	assert.False(t, st.IsLocked)
}
