package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

// Policy holds the business constants of the conversion: which products are
// petroleum, how anonymous buyers are recognised and how summary invoices
// are numbered.
type Policy struct {
	// AnonymousCustomer is the customer name of receipts without an invoice.
	AnonymousCustomer string `yaml:"anonymous_customer"`

	// PetroleumProducts carry the environmental protection tax.
	PetroleumProducts []string `yaml:"petroleum_products"`

	// SummarySuffixes has one product -> suffix map per pricing period.
	SummarySuffixes []map[string]string `yaml:"summary_suffixes"`

	// InvoiceMarkers maps a location to the fixed two-letter invoice marker
	// it uses instead of the symbol series suffix.
	InvoiceMarkers map[string]string `yaml:"invoice_markers"`

	// SummaryUnit is the unit written on summary rows.
	SummaryUnit string `yaml:"summary_unit"`

	// MaxAddressLength is the longest customer address the ledger accepts.
	MaxAddressLength int `yaml:"max_address_length"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	var p Policy
	if err := yaml.Unmarshal(defaultPolicyYAML, &p); err != nil {
		panic(fmt.Sprintf("config: embedded policy is invalid: %v", err))
	}
	return p
}

// LoadPolicy returns the built-in policy overlaid with the YAML file at path.
// An empty path returns the built-in policy unchanged.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}

	return policy, nil
}

// Validate checks the policy for settings the converter cannot work without.
func (p Policy) Validate() error {
	if p.AnonymousCustomer == "" {
		return fmt.Errorf("anonymous_customer is required")
	}
	if len(p.PetroleumProducts) == 0 {
		return fmt.Errorf("petroleum_products must not be empty")
	}
	if len(p.SummarySuffixes) != 2 {
		return fmt.Errorf("summary_suffixes needs exactly 2 periods, got %d", len(p.SummarySuffixes))
	}
	if p.MaxAddressLength <= 0 {
		return fmt.Errorf("max_address_length must be positive")
	}
	return nil
}

// IsPetroleum reports whether product carries the environmental tax.
func (p Policy) IsPetroleum(product string) bool {
	for _, name := range p.PetroleumProducts {
		if name == product {
			return true
		}
	}
	return false
}

// SummarySuffix returns the suffix for product in the given 0-based period.
func (p Policy) SummarySuffix(period int, product string) string {
	if period < 0 || period >= len(p.SummarySuffixes) {
		return ""
	}
	return p.SummarySuffixes[period][product]
}
