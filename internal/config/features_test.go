package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFeatures(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected FeatureAvailability
	}{
		{
			name:   "nothing configured",
			config: Config{},
			expected: FeatureAvailability{
				Storage:   false,
				Retrieval: false,
				Billing:   false,
				Rendering: false,
			},
		},
		{
			name: "database only",
			config: Config{
				Database: DatabaseConfig{DSN: "postgres://localhost/resumeforge"},
			},
			expected: FeatureAvailability{
				Storage:   true,
				Retrieval: true,
				Billing:   false,
				Rendering: false,
			},
		},
		{
			name: "billing without storage",
			config: Config{
				Billing: BillingConfig{WebhookSecret: "whsec_test"},
			},
			expected: FeatureAvailability{
				Storage:   false,
				Retrieval: false,
				Billing:   true,
				Rendering: false,
			},
		},
		{
			name: "everything configured",
			config: Config{
				Database: DatabaseConfig{DSN: "postgres://localhost/resumeforge"},
				Billing:  BillingConfig{WebhookSecret: "whsec_test"},
				Render:   RenderConfig{Enabled: true},
			},
			expected: FeatureAvailability{
				Storage:   true,
				Retrieval: true,
				Billing:   true,
				Rendering: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.computeFeatures()
			assert.Equal(t, tt.expected, tt.config.Features)
		})
	}
}

func TestComputeFeaturesAfterSecretsApplied(t *testing.T) {
	config := Config{}
	config.computeFeatures()
	assert.False(t, config.Features.Billing)

	// Simulates a webhook secret arriving from Vault after initial load
	config.Billing.WebhookSecret = "whsec_from_vault"
	config.computeFeatures()
	assert.True(t, config.Features.Billing)
}
