package signoff

import (
	"errors"
	"fmt"
)

// ErrDuplicateType is returned when a loaded chain carries more than one
// sign-off of the same type. That violates the storage uniqueness guarantee
// and is treated as a data-integrity failure for the workpaper.
var ErrDuplicateType = errors.New("duplicate sign-off type in chain")

// Record is one existing sign-off on a workpaper, reduced to what the
// evaluator needs
type Record struct {
	Type   Type
	UserID string
}

// Status is the computed sign-off position of a workpaper for a given
// acting user. Derived, never stored.
type Status struct {
	CanSign          bool   `json:"can_sign"`
	NextRequiredType *Type  `json:"next_required_type"`
	CompletedTypes   []Type `json:"completed_types"`
	PendingTypes     []Type `json:"pending_types"`
	IsFullySigned    bool   `json:"is_fully_signed"`
	IsLocked         bool   `json:"is_locked"`
}

// Chain evaluates the preparer → reviewer → manager → partner ordering for
// a single workpaper. It is a pure view over a snapshot of sign-off rows;
// the in-memory checks here are advisory; the persistence layer's
// uniqueness constraint on (workpaper, type) is the final arbiter under
// races.
type Chain struct {
	byType map[Type]Record
}

// NewChain builds a chain from the workpaper's current sign-off rows.
func NewChain(records []Record) (*Chain, error) {
	byType := make(map[Type]Record, len(records))
	for _, rec := range records {
		if !rec.Type.IsValid() {
			return nil, fmt.Errorf("invalid sign-off type %q", rec.Type)
		}
		if _, exists := byType[rec.Type]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateType, rec.Type)
		}
		byType[rec.Type] = rec
	}
	return &Chain{byType: byType}, nil
}

// NextRequiredType returns the first type in hierarchy order with no
// sign-off, and false when the chain is fully signed.
func (c *Chain) NextRequiredType() (Type, bool) {
	for _, t := range Hierarchy {
		if _, signed := c.byType[t]; !signed {
			return t, true
		}
	}
	return "", false
}

// IsFullySigned returns true when all four types are present
func (c *Chain) IsFullySigned() bool {
	_, pending := c.NextRequiredType()
	return !pending
}

// IsLocked returns true once a partner sign-off exists. Partner sign-off is
// terminal: no edits and no further sign-offs until it is revoked.
func (c *Chain) IsLocked() bool {
	_, locked := c.byType[TypePartner]
	return locked
}

// CompletedTypes returns the signed types in hierarchy order
func (c *Chain) CompletedTypes() []Type {
	var out []Type
	for _, t := range Hierarchy {
		if _, signed := c.byType[t]; signed {
			out = append(out, t)
		}
	}
	return out
}

// PendingTypes returns the unsigned types in hierarchy order
func (c *Chain) PendingTypes() []Type {
	var out []Type
	for _, t := range Hierarchy {
		if _, signed := c.byType[t]; !signed {
			out = append(out, t)
		}
	}
	return out
}

// HasSignedBy returns true if the given user already signed this workpaper
// in any capacity
func (c *Chain) HasSignedBy(userID string) bool {
	for _, rec := range c.byType {
		if rec.UserID == userID {
			return true
		}
	}
	return false
}

// CanSign reports whether the user may record the next required sign-off:
// the chain must not be complete, the user's role must cover the next
// type, and the same person must not have signed this workpaper before
// (independence of review across steps).
func (c *Chain) CanSign(userID string, role Role) bool {
	next, pending := c.NextRequiredType()
	if !pending {
		return false
	}
	if !role.CanRecord(next) {
		return false
	}
	return !c.HasSignedBy(userID)
}

// StatusFor computes the full derived status for an acting user
func (c *Chain) StatusFor(userID string, role Role) Status {
	st := Status{
		CanSign:        c.CanSign(userID, role),
		CompletedTypes: c.CompletedTypes(),
		PendingTypes:   c.PendingTypes(),
		IsFullySigned:  c.IsFullySigned(),
		IsLocked:       c.IsLocked(),
	}
	if next, pending := c.NextRequiredType(); pending {
		st.NextRequiredType = &next
	}
	return st
}
