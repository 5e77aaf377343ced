package db

import (
	"context"
	"errors"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const vaultSettingsID = 1

// VaultSettings loads the vault's administrative row. Before the first save
// every address is zero.
func (r *Repository) VaultSettings(ctx context.Context, lock bool) (*domain.VaultSettings, error) {
	var row models.VaultSetting
	err := r.locked(ctx, lock).Where("id = ?", vaultSettingsID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.VaultSettings{}, nil
		}
		return nil, err
	}
	return &domain.VaultSettings{
		Owner:          common.HexToAddress(row.Owner),
		PayrollManager: common.HexToAddress(row.PayrollManager),
		Address:        common.HexToAddress(row.Address),
	}, nil
}

func (r *Repository) SaveVaultSettings(ctx context.Context, s *domain.VaultSettings) error {
	row := models.VaultSetting{
		ID:             vaultSettingsID,
		Owner:          addr(s.Owner),
		PayrollManager: addr(s.PayrollManager),
		Address:        addr(s.Address),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "payroll_manager", "address", "updated_at"}),
	}).Create(&row).Error
}
