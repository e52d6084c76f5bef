// =============================================================================
// BKHD to UpSSE Converter - Reference Data Bundle
// =============================================================================
//
// The Bundle is the immutable set of lookup tables every conversion queries:
//   - per location : warehouse code, invoice-symbol prefix, zone, matter codes
//   - per zone     : ledger accounts for normal rows and for tax rows
//   - per product  : product code and environmental fee per unit
//   - per tax ID   : customer code
//
// A Bundle is built once by the loader (or by hand in tests) and is passed by
// pointer into the converter. Nothing mutates it after construction.
//
// Missing entries are not validated up front. They surface as *LookupError
// when a conversion actually asks for them.
//
// =============================================================================

package refdata

import (
	"github.com/shopspring/decimal"
)

// Location is the configuration of one fuel station.
type Location struct {
	Name          string
	WarehouseCode string
	SymbolPrefix  string
	Zone          string

	// MatterCodes maps product names to the location's matter (case) code.
	MatterCodes map[string]string

	// LubricantMatterCode is the generic code used for products without
	// their own entry.
	LubricantMatterCode string
}

// MatterCode returns the product-specific matter code, or the lubricant
// code when fallback is set and the product has no entry.
func (l Location) MatterCode(product string, fallback bool) string {
	if code, ok := l.MatterCodes[product]; ok {
		return code
	}
	if fallback {
		return l.LubricantMatterCode
	}
	return ""
}

// AccountSet holds the four ledger accounts written on a row.
type AccountSet struct {
	Debit      string
	Revenue    string
	Cost       string
	TaxPayable string
}

// Bundle is the full reference configuration.
type Bundle struct {
	// LocationOrder lists location names in workbook order.
	LocationOrder []string
	Locations     map[string]Location

	// Normal-row accounts keyed by zone, plus the zone-independent cost account.
	DebitAccounts      map[string]string
	RevenueAccounts    map[string]string
	TaxPayableAccounts map[string]string
	CostAccount        string

	// Environmental-tax-row accounts keyed by zone.
	TaxDebitAccounts      map[string]string
	TaxRevenueAccounts    map[string]string
	TaxTaxPayableAccounts map[string]string
	TaxCostAccount        string

	EnvironmentalFees map[string]decimal.Decimal
	ProductCodes      map[string]string
	CustomerCodes     map[string]string
}

// Location resolves a location and checks its required fields.
func (b *Bundle) Location(name string) (Location, error) {
	loc, ok := b.Locations[name]
	if !ok {
		return Location{}, &LookupError{Table: "location", Key: name, Field: "entry"}
	}
	if loc.WarehouseCode == "" {
		return Location{}, &LookupError{Table: "location", Key: name, Field: "warehouse code"}
	}
	if loc.SymbolPrefix == "" {
		return Location{}, &LookupError{Table: "location", Key: name, Field: "invoice symbol"}
	}
	if loc.Zone == "" {
		return Location{}, &LookupError{Table: "location", Key: name, Field: "zone"}
	}
	return loc, nil
}

// NormalAccounts returns the accounts for invoice and summary rows of a zone.
func (b *Bundle) NormalAccounts(zone string) (AccountSet, error) {
	return resolveAccounts(zone, "zone accounts", b.DebitAccounts, b.RevenueAccounts, b.TaxPayableAccounts, b.CostAccount)
}

// TaxAccounts returns the accounts for environmental-tax rows of a zone.
func (b *Bundle) TaxAccounts(zone string) (AccountSet, error) {
	return resolveAccounts(zone, "zone tax accounts", b.TaxDebitAccounts, b.TaxRevenueAccounts, b.TaxTaxPayableAccounts, b.TaxCostAccount)
}

func resolveAccounts(zone, table string, debit, revenue, taxPayable map[string]string, cost string) (AccountSet, error) {
	set := AccountSet{
		Debit:      debit[zone],
		Revenue:    revenue[zone],
		Cost:       cost,
		TaxPayable: taxPayable[zone],
	}

	switch {
	case set.Debit == "":
		return AccountSet{}, &LookupError{Table: table, Key: zone, Field: "debit account"}
	case set.Revenue == "":
		return AccountSet{}, &LookupError{Table: table, Key: zone, Field: "revenue account"}
	case set.Cost == "":
		return AccountSet{}, &LookupError{Table: table, Key: zone, Field: "cost account"}
	case set.TaxPayable == "":
		return AccountSet{}, &LookupError{Table: table, Key: zone, Field: "tax payable account"}
	}

	return set, nil
}

// EnvironmentalFee returns the per-unit fee for a product, zero if unknown.
func (b *Bundle) EnvironmentalFee(product string) decimal.Decimal {
	if fee, ok := b.EnvironmentalFees[product]; ok {
		return fee
	}
	return decimal.Zero
}

// ProductCode returns the product code, empty if unknown.
func (b *Bundle) ProductCode(product string) string {
	return b.ProductCodes[product]
}

// CustomerCode returns the customer code registered for a tax ID.
func (b *Bundle) CustomerCode(taxID string) (string, bool) {
	code, ok := b.CustomerCodes[taxID]
	return code, ok && code != ""
}
