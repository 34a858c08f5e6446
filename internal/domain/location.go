package domain

import "time"

// Location represents a physical address and its cached locale research.
// A location is research-complete only when Research is non-empty.
type Location struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Address string `gorm:"type:text;not null;uniqueIndex:idx_locations_address" json:"address"`
	City    string `gorm:"type:text;index:idx_locations_city" json:"city"`
	State   string `gorm:"type:text;index:idx_locations_state" json:"state"`
	IsRural bool   `gorm:"default:false" json:"is_rural"`

	// Research narratives. The general research, chamber and government
	// fields carry the same text in the current design; they are kept as
	// separate columns so they can diverge without a migration.
	Research       string `gorm:"type:text" json:"research"`
	ChamberInfo    string `gorm:"type:text" json:"chamber_info"`
	GovernmentInfo string `gorm:"type:text" json:"government_info"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Location.
func (Location) TableName() string {
	return "locations"
}

// ResearchComplete reports whether the location carries a research narrative.
func (l *Location) ResearchComplete() bool {
	return l.Research != ""
}

// Display returns the human-readable label used by the locations listing.
func (l *Location) Display() string {
	return l.City + ", " + l.State + " - " + l.Address
}

// LocaleResearch is the result of researching a city/state pair.
type LocaleResearch struct {
	City         string `json:"city"`
	State        string `json:"state"`
	Narrative    string `json:"narrative"`
	IsRural      bool   `json:"is_rural"`
	SearchRadius int    `json:"search_radius"`
}
