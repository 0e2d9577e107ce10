package filter

import (
	"testing"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func ids(posts []models.Post) []uint {
	out := make([]uint, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func samplePosts() []models.Post {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return []models.Post{
		{ID: 1, Title: "Roma", Description: "Colosseo al tramonto", Mood: strPtr("entusiasta"), Tags: []string{"città", "storia"}, ActualCost: floatPtr(300), CreatedAt: base},
		{ID: 2, Title: "Dolomiti", Description: "Trekking in quota", Mood: strPtr("bella esperienza"), Tags: []string{"Montagna"}, ActualCost: floatPtr(120), CreatedAt: base.Add(48 * time.Hour)},
		{ID: 3, Title: "Campeggio", Description: "Pioggia tutta la notte", Mood: strPtr("delusione totale"), Tags: []string{}, CreatedAt: base.Add(24 * time.Hour)},
		{ID: 4, Title: "Lago di Garda", Description: "Giro in barca", Tags: []string{"lago", "montagna"}, ActualCost: floatPtr(120), CreatedAt: base.Add(72 * time.Hour)},
	}
}

func TestApply(t *testing.T) {
	posts := samplePosts()

	tests := []struct {
		name     string
		criteria Criteria
		expected []uint
	}{
		{"empty criteria pass everything", Criteria{}, []uint{1, 2, 3, 4}},
		{"whitespace criteria pass everything", Criteria{Text: "  ", Mood: " "}, []uint{1, 2, 3, 4}},
		{"text matches title", Criteria{Text: "roma"}, []uint{1}},
		{"text matches description", Criteria{Text: "BARCA"}, []uint{4}},
		{"text no match", Criteria{Text: "parigi"}, []uint{}},
		{"mood substring", Criteria{Mood: "esperienza"}, []uint{2}},
		{"mood skips posts without mood", Criteria{Mood: "e"}, []uint{1, 2, 3}},
		{"tag case insensitive", Criteria{Tag: "MONTAGNA"}, []uint{2, 4}},
		{"tag substring", Criteria{Tag: "sto"}, []uint{1}},
		{"criteria combine with AND", Criteria{Tag: "montagna", Text: "trekking"}, []uint{2}},
		{"unsatisfiable combination", Criteria{Tag: "lago", Mood: "entusiasta"}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Apply(posts, tt.criteria)))
		})
	}
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(posts), "input is untouched")
}

func TestSort(t *testing.T) {
	posts := samplePosts()

	tests := []struct {
		name     string
		key      SortKey
		expected []uint
	}{
		{"date desc", DateDesc, []uint{4, 2, 3, 1}},
		{"date asc", DateAsc, []uint{1, 3, 2, 4}},
		{"cost desc is stable on ties", CostDesc, []uint{1, 2, 4, 3}},
		{"cost asc treats missing as zero", CostAsc, []uint{3, 2, 4, 1}},
		{"unknown key behaves as date desc", SortKey("popularity"), []uint{4, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Sort(posts, tt.key)))
		})
	}
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(posts), "input is untouched")
}

func TestSort_MissingCreatedAtSortsAsOldest(t *testing.T) {
	posts := []models.Post{
		{ID: 1, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2},
	}
	assert.Equal(t, []uint{1, 2}, ids(Sort(posts, DateDesc)))
	assert.Equal(t, []uint{2, 1}, ids(Sort(posts, DateAsc)))
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":           DateDesc,
		"date_desc":  DateDesc,
		"DATE_ASC":   DateAsc,
		" cost_desc": CostDesc,
		"cost_asc":   CostAsc,
		"bogus":      DateDesc,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, ParseSortKey(in), in)
	}
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.True(t, Criteria{Text: " "}.IsZero())
	assert.False(t, Criteria{Tag: "x"}.IsZero())
}
