package postgres

import (
	ierr "github.com/salonhq/salonhq/internal/errors"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every table this package owns
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&checkoutSessionRow{},
		&invoiceRow{},
		&customerRow{},
		&catalogItemRow{},
		&benefitRow{},
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to run schema migrations").
			Mark(ierr.ErrDatabase)
	}

	// Partial unique index enforcing one active session per appointment;
	// concurrent starts lose here and resolve to the winner in the service.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_checkout_sessions_active_appointment
		ON checkout_sessions (tenant_id, appointment_id)
		WHERE appointment_id IS NOT NULL AND session_status IN ('open', 'settled')`).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create checkout session uniqueness index").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
