package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Employee is the employment record for one (company, wallet) pair.
type Employee struct {
	CompanyID uint64
	Wallet    common.Address
	// Amount is paid per cycle, in token base units.
	Amount uint64
	// Frequency is the number of seconds between payments. It is informational.
	Frequency uint64
	// LockPeriod is the number of seconds a payment stays locked after creation.
	LockPeriod uint64
	Accepted   bool
	Exists     bool
	Active     bool
	CreatedAt  time.Time
}

// Status names the place of the record in its lifecycle.
func (e *Employee) Status() EmployeeStatus {
	switch {
	case e == nil || !e.Exists:
		return StatusNonexistent
	case !e.Active:
		return StatusTerminated
	case e.Accepted:
		return StatusAccepted
	default:
		return StatusAdded
	}
}

// EmployeeStatus is the lifecycle state of an employment record.
type EmployeeStatus string

const (
	StatusNonexistent EmployeeStatus = "NONEXISTENT"
	StatusAdded       EmployeeStatus = "ADDED"
	StatusAccepted    EmployeeStatus = "ACCEPTED"
	StatusTerminated  EmployeeStatus = "TERMINATED"
)

// EmployeeDocument links an off-chain content identifier to an employee.
type EmployeeDocument struct {
	CompanyID uint64
	Employee  common.Address
	// PieceCID addresses the file in the external content-addressed store.
	PieceCID   string
	FileName   string
	FileSize   uint64
	Uploader   common.Address
	UploadedAt time.Time
}
