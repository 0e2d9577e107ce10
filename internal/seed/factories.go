// Package seed creates demo data for development databases. Posts are
// written through the repositories so tags follow the same linking path as
// API writes.
package seed

import (
	"fmt"
	"math"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

var travelTags = []string{
	"mare", "montagna", "città", "cultura", "cibo", "trekking", "relax",
	"estate", "inverno", "weekend", "on the road", "famiglia", "low cost",
}

// Factory builds journal entities with plausible random content.
// It does not touch the database.
type Factory struct {
	faker      *gofakeit.Faker
	bcryptCost int
	maxDays    int
	now        func() time.Time
}

// NewFactory returns a Factory. A zero seed picks a random one; a fixed seed
// makes the generated data reproducible.
func NewFactory(seed int64, bcryptCost int) *Factory {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Factory{
		faker:      gofakeit.New(seed),
		bcryptCost: bcryptCost,
		maxDays:    365,
		now:        time.Now,
	}
}

// HashPassword hashes a plaintext password with the factory's cost.
func (f *Factory) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), f.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// BuildUser returns an unsaved user that logs in with password.
func (f *Factory) BuildUser(password string) (*models.User, error) {
	hash, err := f.HashPassword(password)
	if err != nil {
		return nil, err
	}
	// The suffix keeps usernames unique across large batches.
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(1000, 9999))
	return &models.User{
		Username: username,
		Email:    username + "@" + f.faker.DomainName(),
		Password: hash,
	}, nil
}

// BuildPost returns an unsaved post for userID and the tags to link to it.
func (f *Factory) BuildPost(userID uint) (*models.Post, []string) {
	city := f.faker.City()
	location := fmt.Sprintf("%s, %s", city, f.faker.Country())
	mood := f.faker.RandomString(models.KnownMoods)
	positive := f.faker.Sentence(8)
	negative := f.faker.Sentence(6)
	lat := round(f.faker.Latitude(), 6)
	lon := round(f.faker.Longitude(), 6)
	physical := f.faker.Number(models.MinEffort, models.MaxEffort)
	economic := f.faker.Number(models.MinEffort, models.MaxEffort)
	cost := round(f.faker.Float64Range(20, 3000), 2)

	now := f.now()
	post := &models.Post{
		UserID:         userID,
		Title:          "Viaggio a " + city,
		Description:    f.faker.Paragraph(1, 3, 12, " "),
		Location:       &location,
		Latitude:       &lat,
		Longitude:      &lon,
		Mood:           &mood,
		PositiveNote:   &positive,
		NegativeNote:   &negative,
		PhysicalEffort: &physical,
		EconomicEffort: &economic,
		ActualCost:     &cost,
		CreatedAt:      f.faker.DateRange(now.AddDate(0, 0, -f.maxDays), now),
	}

	// Roughly one post in four has a remote picture.
	if f.faker.Number(1, 4) == 1 {
		url := fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
		post.MediaURL = &url
	}

	n := f.faker.Number(0, 3)
	names := make([]string, 0, n)
	for range n {
		names = append(names, f.faker.RandomString(travelTags))
	}
	return post, names
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
