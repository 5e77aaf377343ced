package db

import (
	"encoding/json"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// addr renders an address the way it is stored.
func addr(a common.Address) string {
	return a.Hex()
}

func toCompany(m *models.Company) *domain.Company {
	return &domain.Company{
		ID:        m.ID,
		Admin:     common.HexToAddress(m.Admin),
		Name:      m.Name,
		Exists:    true,
		CreatedAt: m.CreatedAt,
	}
}

func toEmployee(m *models.Employee) *domain.Employee {
	return &domain.Employee{
		CompanyID:  m.CompanyID,
		Wallet:     common.HexToAddress(m.Wallet),
		Amount:     m.Amount,
		Frequency:  m.Frequency,
		LockPeriod: m.LockPeriod,
		Accepted:   m.Accepted,
		Exists:     true,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
	}
}

func toDocument(m *models.EmployeeDocument) *domain.EmployeeDocument {
	return &domain.EmployeeDocument{
		CompanyID:  m.CompanyID,
		Employee:   common.HexToAddress(m.Employee),
		PieceCID:   m.PieceCID,
		FileName:   m.FileName,
		FileSize:   m.FileSize,
		Uploader:   common.HexToAddress(m.Uploader),
		UploadedAt: time.Unix(m.UploadedAt, 0).UTC(),
	}
}

func toPayment(m *models.Payment) *domain.Payment {
	p := &domain.Payment{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Company:   common.HexToAddress(m.Company),
		Employee:  common.HexToAddress(m.Employee),
		Amount:    m.Amount,
		ReleaseAt: time.Unix(m.ReleaseAt, 0).UTC(),
		Claimed:   m.Claimed,
		Exists:    true,
	}
	if m.ClaimedAt != nil {
		t := time.Unix(*m.ClaimedAt, 0).UTC()
		p.ClaimedAt = &t
	}
	return p
}

func toPayrollRun(m *models.PayrollRun) *domain.PayrollRun {
	return &domain.PayrollRun{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		CreatedBy:     common.HexToAddress(m.CreatedBy),
		Timestamp:     time.Unix(m.Timestamp, 0).UTC(),
		PaymentsCount: m.PaymentsCount,
		TotalAmount:   m.TotalAmount,
		PaymentIDs:    m.PaymentIDs,
	}
}

func toEvent(m *models.Event) (*domain.Event, error) {
	id, err := uuid.Parse(m.UUID)
	if err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:        id,
		Seq:       m.Seq,
		Type:      domain.EventType(m.Type),
		CompanyID: m.CompanyID,
		Payload:   json.RawMessage(m.Payload),
		CreatedAt: m.CreatedAt,
	}, nil
}
