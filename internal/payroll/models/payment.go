package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Payment is a scheduled, single-use transfer obligation held by the vault.
// A zero-valued Payment stands for an id that was never allocated.
type Payment struct {
	ID        uint64
	CompanyID uint64
	// Company is the admin address whose vault balance funded the payment.
	Company   common.Address
	Employee  common.Address
	Amount    uint64
	ReleaseAt time.Time
	Claimed   bool
	ClaimedAt *time.Time
	Exists    bool
}

// Claimable reports whether the payment can be claimed at now.
func (p *Payment) Claimable(now time.Time) bool {
	return p.Exists && !p.Claimed && !now.Before(p.ReleaseAt)
}

// PaymentFilter narrows a payment listing. Nil fields are ignored.
type PaymentFilter struct {
	CompanyID *uint64
	Company   *common.Address
	Employee  *common.Address
	Claimed   *bool
	Limit     int
}

// PayrollRun records one batch scheduling call.
type PayrollRun struct {
	ID            uint64
	CompanyID     uint64
	CreatedBy     common.Address
	Timestamp     time.Time
	PaymentsCount uint64
	TotalAmount   uint64
	PaymentIDs    []uint64
}

// VaultSettings is the vault's administrative state.
type VaultSettings struct {
	Owner          common.Address
	PayrollManager common.Address
	Address        common.Address
}
