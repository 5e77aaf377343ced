// Package db implements the payroll ledger's storage on top of GORM.
// Postgres is the production backend; sqlite serves local runs and tests.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Sequence names.
const (
	CompanySequence    = "company"
	PaymentSequence    = "payment"
	PayrollRunSequence = "payroll_run"
)

var sequences = []string{CompanySequence, PaymentSequence, PayrollRunSequence}

// Driver selects the database backend.
type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   Driver
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath is used when Driver is SQLite. ":memory:" is accepted.
	SQLitePath string
}

// Dialector returns the GORM dialector for the configured driver.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case Postgres, "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
		return postgres.Open(dsn), nil
	case SQLite:
		return sqlite.Open(c.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}
	return Open(dialector)
}

// Open connects through the given dialector, migrates the schema and seeds
// the id sequences.
func Open(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// A single connection keeps in-memory databases alive and serializes
		// writers the way sqlite expects.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) migrate() error {
	if err := r.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, name := range sequences {
		seq := models.Sequence{Name: name, Next: 0}
		err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to seed sequence %s: %w", name, err)
		}
	}
	return nil
}

// NextSequence allocates the next value of a named sequence. The row is locked
// for the rest of the enclosing transaction, so ids are gap-free and ordered
// the same way inserts commit.
func (r *Repository) NextSequence(ctx context.Context, name string) (uint64, error) {
	var seq models.Sequence
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		Take(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("sequence %s not seeded", name)
		}
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&models.Sequence{}).
		Where("name = ?", name).
		Update("next", seq.Next+1)
	if result.Error != nil {
		return 0, result.Error
	}
	return seq.Next, nil
}

// PeekSequence returns the value the next allocation would hand out.
func (r *Repository) PeekSequence(ctx context.Context, name string) (uint64, error) {
	var seq models.Sequence
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return seq.Next, nil
}

// WithTransaction runs fn inside one database transaction. Any error returned
// by fn rolls back every write fn made.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func (r *Repository) locked(ctx context.Context, lock bool) *gorm.DB {
	tx := r.db.WithContext(ctx)
	if lock {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
