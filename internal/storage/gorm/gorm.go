// Package gormstorage implements storage.Backend on a gorm database. It
// serves both the PostgreSQL backend and the in-memory SQLite one.
package gormstorage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/enixma/dashboard/internal/storage"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Parameter is one stored record.
type Parameter struct {
	Name      string                    `gorm:"primaryKey;size:128"`
	Data      datatypes.JSONType[Value] `gorm:"not null"`
	UpdatedAt time.Time
}

// Value wraps a record's JSON. The column always holds an object, so SQLite
// never coerces a scalar record such as 0.5 to a number.
type Value struct {
	Raw json.RawMessage `json:"value"`
}

// TableName pins the table name across dialects.
func (Parameter) TableName() string {
	return "parameters"
}

// Dependencies holds the collaborators a Backend needs.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend stores records as rows of the parameters table.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New creates a backend on an open connection.
func New(deps Dependencies) *Backend {
	return &Backend{
		db:  deps.DB,
		log: deps.Logger.With().Str("component", "gormstorage").Logger(),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(&Parameter{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Info().Str("dialect", b.db.Dialector.Name()).Msg("Parameter schema ready")
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// Load returns the named record.
func (b *Backend) Load(name string) (json.RawMessage, error) {
	var p Parameter
	err := b.db.Where("name = ?", name).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return p.Data.Data().Raw, nil
}

// Save upserts the named record.
func (b *Backend) Save(name string, data json.RawMessage) error {
	p := Parameter{
		Name:      name,
		Data:      datatypes.NewJSONType(Value{Raw: bytes.Clone(data)}),
		UpdatedAt: time.Now(),
	}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	b.log.Debug().Str("name", name).Int("bytes", len(data)).Msg("Record saved")
	return nil
}

// Delete removes the named record.
func (b *Backend) Delete(name string) error {
	res := b.db.Where("name = ?", name).Delete(&Parameter{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	b.log.Debug().Str("name", name).Msg("Record deleted")
	return nil
}

// All returns every record.
func (b *Backend) All() (map[string]json.RawMessage, error) {
	var rows []Parameter
	if err := b.db.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, p := range rows {
		out[p.Name] = p.Data.Data().Raw
	}
	return out, nil
}
