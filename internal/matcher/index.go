package matcher

import (
	"gst-recon/internal/domain"
)

// KeyFunc derives the matching key for an invoice. A "" key means the
// invoice cannot be indexed and can only ever be reported as missing.
type KeyFunc func(domain.Invoice) string

// InvoiceNumberKey keys on the normalized invoice number alone. Used on the
// sales side, where numbers are unique within one seller's register.
func InvoiceNumberKey(inv domain.Invoice) string {
	return NormalizeInvoiceNumber(inv.InvoiceNumber)
}

// CompositeKey keys on (registration id, normalized invoice number). Used on
// the purchase side, where the same invoice number recurs across suppliers.
func CompositeKey(inv domain.Invoice) string {
	num := NormalizeInvoiceNumber(inv.InvoiceNumber)
	if num == "" {
		return ""
	}
	return NormalizeGSTIN(inv.GSTIN) + "|" + num
}

// Index is a multimap from normalized key to the positions of the invoices
// sharing that key, in input order. Positions (not copies) are stored so the
// engine can keep a consumed set of indices without mutating records.
type Index struct {
	invoices []domain.Invoice
	buckets  map[string][]int
	keys     []string // bucket creation order, for deterministic iteration
}

// NewIndex builds an index over invoices using keyFunc. O(n).
func NewIndex(invoices []domain.Invoice, keyFunc KeyFunc) *Index {
	ix := &Index{
		invoices: invoices,
		buckets:  make(map[string][]int, len(invoices)),
	}
	for pos, inv := range invoices {
		key := keyFunc(inv)
		if key == "" {
			continue
		}
		if _, exists := ix.buckets[key]; !exists {
			ix.keys = append(ix.keys, key)
		}
		ix.buckets[key] = append(ix.buckets[key], pos)
	}
	return ix
}

// Bucket returns the positions indexed under key, in input order.
func (ix *Index) Bucket(key string) []int {
	return ix.buckets[key]
}

// Duplicates returns every bucket holding more than one invoice, in first-seen
// key order.
func (ix *Index) Duplicates(side domain.MatchSide) []domain.DuplicateGroup {
	var groups []domain.DuplicateGroup
	for _, key := range ix.keys {
		positions := ix.buckets[key]
		if len(positions) < 2 {
			continue
		}
		group := domain.DuplicateGroup{Key: key, Side: side}
		for _, pos := range positions {
			group.Invoices = append(group.Invoices, ix.invoices[pos])
		}
		groups = append(groups, group)
	}
	return groups
}
