package config

import "log"

// FeatureAvailability records which optional capabilities this deployment has.
// It is derived from configuration once, after secrets have been applied, so
// handlers can branch on fields instead of probing config values per request.
type FeatureAvailability struct {
	Storage   bool // resume and subscription persistence (requires database DSN)
	Retrieval bool // reference-resume vector search (requires storage)
	Billing   bool // subscription webhook processing (requires webhook secret)
	Rendering bool // server-side PDF generation
}

// computeFeatures derives feature availability from the loaded configuration
func (c *Config) computeFeatures() {
	storage := c.Database.DSN != ""

	c.Features = FeatureAvailability{
		Storage:   storage,
		Retrieval: storage,
		Billing:   c.Billing.WebhookSecret != "",
		Rendering: c.Render.Enabled,
	}

	log.Printf("[CONFIG] Feature availability: storage=%t retrieval=%t billing=%t rendering=%t",
		c.Features.Storage, c.Features.Retrieval, c.Features.Billing, c.Features.Rendering)
}
