package config

import (
	"testing"
	"time"

	"github.com/salonhq/salonhq/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsCheckoutDefaults(t *testing.T) {
	var c Configuration
	c.applyDefaults()

	assert.Equal(t, 24*time.Hour, c.Checkout.SessionTTL)
	assert.Equal(t, 0.01, c.Checkout.PaymentTolerance)
	assert.Equal(t, 5*time.Minute, c.Checkout.SweepInterval)
}

func TestApplyDefaults_WiresPaymentTolerance(t *testing.T) {
	defer types.SetAmountTolerance(0.01)

	c := Configuration{Checkout: CheckoutConfig{PaymentTolerance: 0.05}}
	c.applyDefaults()

	assert.True(t, types.AmountTolerance.Equal(decimal.NewFromFloat(0.05)))
}
