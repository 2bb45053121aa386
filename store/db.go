package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// sliceRecord is the database row for a record.
type sliceRecord struct {
	SpriteKey string `gorm:"primaryKey"`
	V0        float32
	V1        float32
	V2        float32
	V3        float32
	H0        float32
	H1        float32
	H2        float32
	H3        float32
}

func (r sliceRecord) record() Record {
	return Record{
		VerticalBorders:   [4]float32{r.V0, r.V1, r.V2, r.V3},
		HorizontalBorders: [4]float32{r.H0, r.H1, r.H2, r.H3},
	}
}

func toRow(key string, r Record) sliceRecord {
	v, h := r.VerticalBorders, r.HorizontalBorders
	return sliceRecord{
		SpriteKey: key,
		V0:        v[0], V1: v[1], V2: v[2], V3: v[3],
		H0:        h[0], H1: h[1], H2: h[2], H3: h[3],
	}
}

// DB stores records in a SQL database through gorm.
type DB struct {
	db *gorm.DB
}

// OpenDB opens (creating if needed) a SQLite database at path and migrates
// the record table.
func OpenDB(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: empty path")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return NewDB(db)
}

// NewDB wraps an open gorm connection.
func NewDB(db *gorm.DB) (*DB, error) {
	if err := db.AutoMigrate(&sliceRecord{}); err != nil {
		return nil, fmt.Errorf("migrating slice records: %w", err)
	}
	return &DB{db: db}, nil
}

// Close the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Lookup(ctx context.Context, key string) (Record, error) {
	var row sliceRecord
	err := d.db.WithContext(ctx).Where("sprite_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("looking up %s: %w", key, err)
	}
	return row.record(), nil
}

func (d *DB) Save(ctx context.Context, key string, r Record) error {
	if err := validate(key, r); err != nil {
		return err
	}
	row := toRow(key, r)
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (d *DB) Remove(ctx context.Context, key string) error {
	err := d.db.WithContext(ctx).Where("sprite_key = ?", key).Delete(&sliceRecord{}).Error
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (d *DB) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := d.db.WithContext(ctx).Model(&sliceRecord{}).Order("sprite_key").Pluck("sprite_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}
