package model

import (
	"time"
)

// Region groups news items for regional distribution.
type Region string

const (
	RegionEurope  Region = "Europe"
	RegionAsia    Region = "Asia"
	RegionOceania Region = "Oceania"
	RegionAfrica  Region = "Africa"
	RegionAmerica Region = "America"
	RegionGlobal  Region = "Global"
)

// ParseRegion maps a raw string to a known Region. Unknown or empty
// values resolve to RegionGlobal.
func ParseRegion(s string) Region {
	switch Region(s) {
	case RegionEurope, RegionAsia, RegionOceania, RegionAfrica, RegionAmerica:
		return Region(s)
	default:
		return RegionGlobal
	}
}

// News is a single published news item. ID is assigned by the record
// store; the index and the fuzzy matcher only read Title, Description,
// Category, Language, and Region.
type News struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Credit      string    `json:"credit,omitempty"`
	Reporter    string    `json:"reporter,omitempty"`
	Language    string    `json:"language"`
	Region      Region    `json:"region"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	MessageID   int64     `json:"message_id,omitempty"`
}
