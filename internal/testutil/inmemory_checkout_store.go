package testutil

import (
	"context"
	"time"

	"github.com/salonhq/salonhq/internal/domain/checkout"
	ierr "github.com/salonhq/salonhq/internal/errors"
)

// InMemoryCheckoutStore implements checkout.Repository
type InMemoryCheckoutStore struct {
	*InMemoryStore[*checkout.Session]
}

func NewInMemoryCheckoutStore() *InMemoryCheckoutStore {
	return &InMemoryCheckoutStore{
		InMemoryStore: NewInMemoryStore[*checkout.Session](),
	}
}

// copySession deep-copies a session so callers mutate their own view,
// the way a row loaded from the database would behave.
func copySession(s *checkout.Session) *checkout.Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.LineItems = make([]*checkout.LineItem, len(s.LineItems))
	for i, li := range s.LineItems {
		liCopy := *li
		cp.LineItems[i] = &liCopy
	}
	cp.AppliedDiscounts = make([]*checkout.AppliedDiscount, len(s.AppliedDiscounts))
	for i, d := range s.AppliedDiscounts {
		dCopy := *d
		cp.AppliedDiscounts[i] = &dCopy
	}
	cp.Payments = make([]*checkout.PaymentEntry, len(s.Payments))
	for i, p := range s.Payments {
		pCopy := *p
		cp.Payments[i] = &pCopy
	}
	return &cp
}

func (s *InMemoryCheckoutStore) Create(ctx context.Context, session *checkout.Session) error {
	if session == nil {
		return ierr.NewError("session cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if session.AppointmentID != nil {
		if _, err := s.GetActiveByAppointment(ctx, *session.AppointmentID); err == nil {
			return ierr.NewError("active session already exists for appointment").
				WithReportableDetails(map[string]any{
					"appointment_id": *session.AppointmentID,
				}).
				Mark(ierr.ErrConflict)
		}
	}
	if err := s.InMemoryStore.Create(ctx, session.ID, copySession(session)); err != nil {
		return ierr.WithError(err).
			WithHint("Session already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCheckoutStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	session, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("session not found").
			WithHintf("Checkout session %s was not found", id).
			WithReportableDetails(map[string]any{"session_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySession(session), nil
}

func (s *InMemoryCheckoutStore) GetActiveByAppointment(ctx context.Context, appointmentID string) (*checkout.Session, error) {
	sessions, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sess *checkout.Session, _ interface{}) bool {
		return sess.AppointmentID != nil &&
			*sess.AppointmentID == appointmentID &&
			!sess.SessionStatus.IsTerminal()
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ierr.NewError("no active session for appointment").
			WithReportableDetails(map[string]any{"appointment_id": appointmentID}).
			Mark(ierr.ErrNotFound)
	}
	return copySession(sessions[0]), nil
}

func (s *InMemoryCheckoutStore) Update(ctx context.Context, session *checkout.Session) error {
	if session == nil {
		return ierr.NewError("session cannot be nil").
			Mark(ierr.ErrValidation)
	}
	stored, err := s.InMemoryStore.Get(ctx, session.ID)
	if err != nil {
		return ierr.NewError("session not found").
			WithReportableDetails(map[string]any{"session_id": session.ID}).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != session.Version {
		return ierr.NewError("session was modified concurrently").
			WithHint("Reload the session and retry").
			WithReportableDetails(map[string]any{
				"session_id":       session.ID,
				"expected_version": session.Version,
				"actual_version":   stored.Version,
			}).
			Mark(ierr.ErrConflict)
	}
	session.Version++
	session.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, session.ID, copySession(session))
}

func (s *InMemoryCheckoutStore) ListExpirable(ctx context.Context, before time.Time) ([]*checkout.Session, error) {
	sessions, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sess *checkout.Session, _ interface{}) bool {
		return !sess.SessionStatus.IsTerminal() && sess.ExpiresAt.Before(before)
	}, func(i, j *checkout.Session) bool {
		return i.ExpiresAt.Before(j.ExpiresAt)
	})
	if err != nil {
		return nil, err
	}
	out := make([]*checkout.Session, len(sessions))
	for i, sess := range sessions {
		out[i] = copySession(sess)
	}
	return out, nil
}

// ForceExpire rewinds a session's TTL for tests
func (s *InMemoryCheckoutStore) ForceExpire(ctx context.Context, id string) error {
	stored, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	stored.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	return s.InMemoryStore.Update(ctx, id, stored)
}

var _ checkout.Repository = (*InMemoryCheckoutStore)(nil)
