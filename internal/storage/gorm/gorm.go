// Package gormstorage implements the catalog on GORM, backed by Postgres or
// SQLite.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/internal/model"
	"github.com/meridianmaritime/globe/internal/model/convert"
	"github.com/meridianmaritime/globe/pkg/core"
)

// Dependencies holds all dependencies for the GORM catalog backend.
type Dependencies struct {
	DB *gorm.DB
	// Closer releases the connection on Close. Optional.
	Closer io.Closer
	Logger *slog.Logger
}

// Backend stores locations in a database.
type Backend struct {
	db     *gorm.DB
	closer io.Closer
	logger *slog.Logger
}

// New creates a GORM backend. The schema must already be migrated.
func New(deps Dependencies) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: deps.DB, closer: deps.Closer, logger: logger}
}

// Init verifies the database is reachable.
func (b *Backend) Init(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("gorm backend: no database")
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("gorm backend: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("gorm backend ping: %w", err)
	}
	b.logger.Debug("Catalog backend ready", "dialect", b.db.Dialector.Name())
	return nil
}

// Close releases the connection when a closer was given.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Locations returns every location ordered by sort order then ID.
func (b *Backend) Locations(ctx context.Context) ([]core.Location, error) {
	var rows []model.Location
	err := b.db.WithContext(ctx).Order("sort_order").Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return convert.LocationsToCore(rows), nil
}

// Anchor returns the anchor row or core.HomePort when none is set.
func (b *Backend) Anchor(ctx context.Context) (core.Anchor, error) {
	var row model.Location
	err := b.db.WithContext(ctx).Where("is_anchor = ?", true).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return core.HomePort, nil
	case err != nil:
		return core.Anchor{}, fmt.Errorf("reading anchor: %w", err)
	}
	return convert.LocationToAnchor(row), nil
}

// AddLocation inserts l at the end of the catalog and assigns its ID.
func (b *Backend) AddLocation(ctx context.Context, l *core.Location) error {
	if err := geo.ValidateLocation(*l); err != nil {
		return err
	}

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Location{}).Where("name = ?", l.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("checking %s: %w", l.Name, err)
		}
		if count > 0 {
			return core.ErrDuplicateLocation
		}

		var next int
		if err := tx.Model(&model.Location{}).Select("COALESCE(MAX(sort_order), -1) + 1").Scan(&next).Error; err != nil {
			return fmt.Errorf("sort order: %w", err)
		}

		row, err := convert.LocationToGorm(*l, next)
		if err != nil {
			return err
		}
		row.ID = 0
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("inserting %s: %w", l.Name, err)
		}
		l.ID = row.ID
		b.logger.Debug("Location added", "name", l.Name, "id", l.ID)
		return nil
	})
}

// RemoveLocation deletes the named location.
func (b *Backend) RemoveLocation(ctx context.Context, name string) error {
	res := b.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Location{})
	if res.Error != nil {
		return fmt.Errorf("removing %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrLocationNotFound
	}
	return nil
}

// SetAnchor moves the anchor flag to the named location.
func (b *Backend) SetAnchor(ctx context.Context, name string) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Location
		err := tx.Where("name = ?", name).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return core.ErrLocationNotFound
		case err != nil:
			return fmt.Errorf("reading %s: %w", name, err)
		}

		if err := tx.Model(&model.Location{}).Where("is_anchor = ?", true).Update("is_anchor", false).Error; err != nil {
			return fmt.Errorf("clearing anchor: %w", err)
		}
		if err := tx.Model(&row).Update("is_anchor", true).Error; err != nil {
			return fmt.Errorf("setting anchor: %w", err)
		}
		return nil
	})
}
