package models

import "time"

// Known mood values offered by the journal UI. Mood itself is free text.
const (
	MoodEnthusiastic = "entusiasta"
	MoodGreat        = "bella esperienza"
	MoodNormal       = "normale"
	MoodSoSo         = "così così"
	MoodDisappointed = "delusione totale"
)

// KnownMoods lists the mood values offered by the journal UI.
var KnownMoods = []string{MoodEnthusiastic, MoodGreat, MoodNormal, MoodSoSo, MoodDisappointed}

// Effort scores are integers in [MinEffort, MaxEffort].
const (
	MinEffort = 1
	MaxEffort = 5
)

// Column caps in characters; they match the VARCHAR sizes of the schema.
const (
	MaxTitleLength    = 255
	MaxLocationLength = 255
	MaxMoodLength     = 100
	MaxMediaURLLength = 512
)

// Post is a single travel journal entry. Optional columns are nil when absent.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	Location       *string   `gorm:"size:255" json:"location"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	Mood           *string   `gorm:"size:100" json:"mood"`
	PositiveNote   *string   `gorm:"type:text" json:"positive_note"`
	NegativeNote   *string   `gorm:"type:text" json:"negative_note"`
	PhysicalEffort *int      `json:"physical_effort"`
	EconomicEffort *int      `json:"economic_effort"`
	ActualCost     *float64  `json:"actual_cost"`
	MediaURL       *string   `gorm:"size:512" json:"media_url"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Tags is populated from post_tags on read.
	Tags []string `gorm:"-" json:"tags"`
}
