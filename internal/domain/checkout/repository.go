package checkout

import (
	"context"
	"time"
)

// Repository defines the interface for checkout session persistence.
// Update must enforce the optimistic version column so that two stale
// writers cannot both win; callers additionally serialize mutations per
// session above the persistence boundary.
type Repository interface {
	// Create creates a new session. Implementations must reject a second
	// active session for the same appointment with a conflict error.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*Session, error)

	// GetActiveByAppointment retrieves the single active (open or settled)
	// session for an appointment, or a not found error
	GetActiveByAppointment(ctx context.Context, appointmentID string) (*Session, error)

	// Update persists the session, bumping its version; a version mismatch
	// surfaces as a conflict error
	Update(ctx context.Context, session *Session) error

	// ListExpirable retrieves non-terminal sessions whose TTL elapsed
	// before the given time
	ListExpirable(ctx context.Context, before time.Time) ([]*Session, error)
}
