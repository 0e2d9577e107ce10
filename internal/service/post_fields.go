package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
)

// PostFields carries a post as submitted: every value is the raw string
// received from JSON or a multipart form.
type PostFields struct {
	Title          string
	Description    string
	Location       string
	Latitude       string
	Longitude      string
	Mood           string
	PositiveNote   string
	NegativeNote   string
	PhysicalEffort string
	EconomicEffort string
	ActualCost     string
	MediaURL       string
}

// toPost coerces and validates f. Optional values that are blank or not
// numeric become NULL; out-of-range values are rejected.
func (f PostFields) toPost(ownerID uint) (*models.Post, error) {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Description) == "" {
		return nil, models.NewValidationError("Title and description are required")
	}

	p := &models.Post{
		UserID:         ownerID,
		Title:          f.Title,
		Description:    f.Description,
		Location:       strOrNull(f.Location),
		Latitude:       floatOrNull(f.Latitude),
		Longitude:      floatOrNull(f.Longitude),
		Mood:           strOrNull(f.Mood),
		PositiveNote:   strOrNull(f.PositiveNote),
		NegativeNote:   strOrNull(f.NegativeNote),
		PhysicalEffort: intOrNull(f.PhysicalEffort),
		EconomicEffort: intOrNull(f.EconomicEffort),
		ActualCost:     floatOrNull(f.ActualCost),
		MediaURL:       strOrNull(f.MediaURL),
	}

	for _, c := range []struct {
		field string
		value string
		limit int
	}{
		{"title", f.Title, models.MaxTitleLength},
		{"location", f.Location, models.MaxLocationLength},
		{"mood", f.Mood, models.MaxMoodLength},
		{"media_url", f.MediaURL, models.MaxMediaURLLength},
	} {
		if err := checkLength(c.field, c.value, c.limit); err != nil {
			return nil, err
		}
	}

	if err := checkEffort("physical_effort", p.PhysicalEffort); err != nil {
		return nil, err
	}
	if err := checkEffort("economic_effort", p.EconomicEffort); err != nil {
		return nil, err
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return nil, models.NewValidationError("latitude must be between -90 and 90")
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return nil, models.NewValidationError("longitude must be between -180 and 180")
	}
	return p, nil
}

func checkEffort(field string, v *int) error {
	if v != nil && (*v < models.MinEffort || *v > models.MaxEffort) {
		return models.NewValidationError(fmt.Sprintf("%s must be between %d and %d", field, models.MinEffort, models.MaxEffort))
	}
	return nil
}

// checkLength counts characters, not bytes, as VARCHAR(n) does.
func checkLength(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return models.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

// checkTags rejects tag names that would not fit tags.name.
func checkTags(names []string) error {
	for _, n := range names {
		if utf8.RuneCountInString(n) > models.MaxTagNameLength {
			return models.NewValidationError(fmt.Sprintf("tags must be at most %d characters each", models.MaxTagNameLength))
		}
	}
	return nil
}

func strOrNull(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func floatOrNull(s string) *float64 {
	f, ok := parseFinite(s)
	if !ok {
		return nil
	}
	return &f
}

// intOrNull truncates toward zero ("3.7" is 3). Values beyond the int32
// range are clamped so range checks still reject them.
func intOrNull(s string) *int {
	f, ok := parseFinite(s)
	if !ok {
		return nil
	}
	f = math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(f)))
	n := int(f)
	return &n
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
