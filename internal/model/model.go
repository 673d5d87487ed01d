package model

import (
	"database/sql/driver"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&CatalogInfo{},
	&Location{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// CatalogInfo describes the catalog instance
type CatalogInfo struct {
	gorm.Model
	Owner       string `json:"owner" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
	Website     string `json:"website" gorm:"size:255"`
}

func (*CatalogInfo) TableName() string {
	return "catalog_infos"
}

////////////////////////
// CATALOG MODELS
////////////////////////

// Location is an office or port shown as a marker on the globe.
// At most one row has IsAnchor set; the globe faces it at startup.
type Location struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Name      string         `json:"name" gorm:"size:127;uniqueIndex:idx_location_name"`
	Country   string         `json:"country" gorm:"size:127"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Position  WebMercator    `json:"position"` // EPSG:3857, derived from Latitude/Longitude
	Tags      datatypes.JSON `json:"tags"`
	SortOrder int            `json:"sortOrder" gorm:"index:idx_location_sort"`
	IsAnchor  bool           `json:"isAnchor" gorm:"default:false"`
}

func (*Location) TableName() string {
	return "locations"
}

// WebMercator is a point in EPSG:3857 stored as WKB.
type WebMercator struct {
	geom.Point
}

// GormDBDataType picks a binary column type per dialect.
func (WebMercator) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bytea"
	}
	return "blob"
}

// Value encodes the point as WKB. Empty points are stored as NULL.
func (p WebMercator) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	return p.Point.Value()
}

// Scan decodes a WKB point. NULL leaves the point empty.
func (p *WebMercator) Scan(src any) error {
	if src == nil {
		p.Point = geom.Point{}
		return nil
	}
	return p.Point.Scan(src)
}
