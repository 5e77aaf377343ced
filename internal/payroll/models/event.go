package models

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// EventType names a ledger event.
type EventType string

const (
	CompanyRegistered     EventType = "CompanyRegistered"
	EmployeeAdded         EventType = "EmployeeAdded"
	EmployeeAccepted      EventType = "EmployeeAccepted"
	EmployeeTerminated    EventType = "EmployeeTerminated"
	DocumentAdded         EventType = "DocumentAdded"
	FundsDeposited        EventType = "FundsDeposited"
	PaymentCreated        EventType = "PaymentCreated"
	PaymentClaimed        EventType = "PaymentClaimed"
	PayrollRunCreated     EventType = "PayrollRunCreated"
	PayrollManagerChanged EventType = "PayrollManagerChanged"
)

// Event is one entry of the ledger's append-only event log.
type Event struct {
	ID uuid.UUID
	// Seq orders events across the whole ledger.
	Seq       uint64
	Type      EventType
	CompanyID *uint64
	Payload   json.RawMessage
	CreatedAt time.Time
}

// EventFilter selects a page of the event log.
type EventFilter struct {
	CompanyID *uint64
	Type      *EventType
	AfterSeq  uint64
	Limit     int
}

// Event payloads, mirroring the original contract events.
type (
	CompanyRegisteredPayload struct {
		CompanyID uint64         `json:"company_id"`
		Admin     common.Address `json:"admin"`
		Name      string         `json:"name"`
	}

	EmployeeAddedPayload struct {
		CompanyID  uint64         `json:"company_id"`
		Employee   common.Address `json:"employee"`
		Amount     uint64         `json:"amount"`
		Frequency  uint64         `json:"frequency"`
		LockPeriod uint64         `json:"lock_period"`
	}

	EmployeePayload struct {
		CompanyID uint64         `json:"company_id"`
		Employee  common.Address `json:"employee"`
	}

	DocumentAddedPayload struct {
		CompanyID uint64         `json:"company_id"`
		Employee  common.Address `json:"employee"`
		PieceCID  string         `json:"piece_cid"`
		FileName  string         `json:"file_name"`
		FileSize  uint64         `json:"file_size"`
		Uploader  common.Address `json:"uploader"`
	}

	FundsDepositedPayload struct {
		Company common.Address `json:"company"`
		Amount  uint64         `json:"amount"`
	}

	PaymentCreatedPayload struct {
		PaymentID uint64         `json:"payment_id"`
		CompanyID uint64         `json:"company_id"`
		Company   common.Address `json:"company"`
		Employee  common.Address `json:"employee"`
		Amount    uint64         `json:"amount"`
		ReleaseAt int64          `json:"release_at"`
	}

	PaymentClaimedPayload struct {
		PaymentID uint64         `json:"payment_id"`
		Employee  common.Address `json:"employee"`
		Amount    uint64         `json:"amount"`
		Relayer   common.Address `json:"relayer"`
	}

	PayrollRunCreatedPayload struct {
		CompanyID     uint64 `json:"company_id"`
		Timestamp     int64  `json:"timestamp"`
		PaymentsCount uint64 `json:"payments_count"`
	}

	PayrollManagerChangedPayload struct {
		Previous common.Address `json:"previous"`
		Current  common.Address `json:"current"`
	}
)
