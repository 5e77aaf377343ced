// Package models defines the core domain models of the payroll ledger:
// companies, employment records, documents, payments, payroll runs and events.
package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Company is an employer identity. A zero-valued Company (Exists == false)
// stands for an unknown id.
type Company struct {
	// ID is the sequential company id, starting at 0.
	ID uint64
	// Admin is the wallet that registered the company and its sole authority.
	Admin common.Address
	// Name is free text with no uniqueness constraint.
	Name string
	// Exists is set once the company is registered and never unset.
	Exists bool
	// CreatedAt records the registration time.
	CreatedAt time.Time
}

// IsAdmin reports whether addr administers an existing company.
func (c *Company) IsAdmin(addr common.Address) bool {
	return c != nil && c.Exists && c.Admin == addr
}
