// Package models contains the table models of the payroll ledger,
// configured to work using GORM as the ORM. Addresses are stored as
// checksummed hex strings and timestamps as unix seconds.
package models

import (
	"time"
)

// Company is the companies table. IDs come from the "company" sequence and
// start at 0, so the primary key is not auto-incremented.
type Company struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	Admin     string `gorm:"size:42;index;not null"`
	Name      string `gorm:"size:128;not null"`
	CreatedAt time.Time
}

// Employee is the employees table; one row per (company, wallet) pair.
// The composite unique index doubles as the per-company roster.
type Employee struct {
	ID         uint   `gorm:"primaryKey"`
	CompanyID  uint64 `gorm:"uniqueIndex:idx_employee_pair;not null"`
	Wallet     string `gorm:"size:42;uniqueIndex:idx_employee_pair;not null"`
	Amount     uint64 `gorm:"not null"`
	Frequency  uint64
	LockPeriod uint64
	Accepted   bool `gorm:"not null;default:false"`
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EmployeeDocument is the append-only employee_documents table.
type EmployeeDocument struct {
	ID         uint   `gorm:"primaryKey"`
	CompanyID  uint64 `gorm:"index;not null"`
	Employee   string `gorm:"size:42;index;not null"`
	PieceCID   string `gorm:"size:255;not null"`
	FileName   string `gorm:"size:255;not null"`
	FileSize   uint64
	Uploader   string `gorm:"size:42;not null"`
	UploadedAt int64  `gorm:"not null"`
}

// Payment is the payments table. IDs come from the "payment" sequence.
type Payment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	CompanyID uint64 `gorm:"index;not null"`
	Company   string `gorm:"size:42;index;not null"`
	Employee  string `gorm:"size:42;index;not null"`
	Amount    uint64 `gorm:"not null"`
	ReleaseAt int64  `gorm:"not null"`
	Claimed   bool   `gorm:"not null;default:false"`
	ClaimedAt *int64
}

// CompanyBalance is the vault's accounting of deposited but unscheduled funds
// per company admin address.
type CompanyBalance struct {
	Company   string `gorm:"primaryKey;size:42"`
	Amount    uint64 `gorm:"not null"`
	UpdatedAt time.Time
}

// PayrollRun is the payroll_runs table.
type PayrollRun struct {
	ID            uint64   `gorm:"primaryKey;autoIncrement:false"`
	CompanyID     uint64   `gorm:"index;not null"`
	CreatedBy     string   `gorm:"size:42;not null"`
	Timestamp     int64    `gorm:"not null"`
	PaymentsCount uint64   `gorm:"not null"`
	TotalAmount   uint64   `gorm:"not null"`
	PaymentIDs    []uint64 `gorm:"serializer:json;type:text"`
}

// VaultSetting is a single-row table holding the vault's administrative state.
type VaultSetting struct {
	ID             uint   `gorm:"primaryKey"`
	Owner          string `gorm:"size:42"`
	PayrollManager string `gorm:"size:42"`
	Address        string `gorm:"size:42"`
	UpdatedAt      time.Time
}

// TokenBalance is the token ledger's balance table.
type TokenBalance struct {
	Owner  string `gorm:"primaryKey;size:42"`
	Amount uint64 `gorm:"not null"`
}

// TokenAllowance records how much Spender may move on behalf of Owner.
type TokenAllowance struct {
	Owner   string `gorm:"primaryKey;size:42"`
	Spender string `gorm:"primaryKey;size:42"`
	Amount  uint64 `gorm:"not null"`
}

// Sequence is a named monotonic counter. Next is the value handed out by the
// following allocation.
type Sequence struct {
	Name string `gorm:"primaryKey;size:64"`
	Next uint64 `gorm:"not null"`
}

// Event is the outbox/event log. Seq is assigned by the database and orders
// every event in the ledger.
type Event struct {
	Seq       uint64  `gorm:"primaryKey"`
	UUID      string  `gorm:"size:36;uniqueIndex;not null"`
	Type      string  `gorm:"size:64;index;not null"`
	CompanyID *uint64 `gorm:"index"`
	Payload   string  `gorm:"type:text"`
	CreatedAt time.Time
}

// All lists every table model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&Employee{},
		&EmployeeDocument{},
		&Payment{},
		&CompanyBalance{},
		&PayrollRun{},
		&VaultSetting{},
		&TokenBalance{},
		&TokenAllowance{},
		&Sequence{},
		&Event{},
	}
}
