package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
	"github.com/AlbertoOrlando/travel-journal-app/internal/repository"
	"github.com/AlbertoOrlando/travel-journal-app/internal/service"
	"github.com/AlbertoOrlando/travel-journal-app/internal/tags"
	"github.com/AlbertoOrlando/travel-journal-app/internal/validation"

	"gorm.io/gorm"
)

// DefaultPassword is the password of every randomly generated user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	// Seed fixes the random generator; zero means random.
	Seed int64
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
}

// Result counts what a seeding run created.
type Result struct {
	Users int
	Posts int
}

type Seeder struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	service *service.PostService
	factory *Factory
	logger  *slog.Logger
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	posts := repository.NewPostRepository(db, repository.NewTagRepository(db))
	return &Seeder{
		users:   repository.NewUserRepository(db),
		posts:   posts,
		service: service.NewPostService(posts, nil),
		factory: NewFactory(opts.Seed, opts.BcryptCost),
		logger:  logger,
	}
}

// Random creates numUsers users and spreads numPosts posts across them.
func (s *Seeder) Random(ctx context.Context, numUsers, numPosts int) (Result, error) {
	var res Result
	if numUsers <= 0 {
		if numPosts > 0 {
			return res, fmt.Errorf("cannot create %d posts without users", numPosts)
		}
		return res, nil
	}

	users := make([]*models.User, 0, numUsers)
	for range numUsers {
		u, err := s.factory.BuildUser(DefaultPassword)
		if err != nil {
			return res, err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		users = append(users, u)
		res.Users++
	}
	s.logger.InfoContext(ctx, "seeded users", slog.Int("count", res.Users))

	for i := range numPosts {
		owner := users[i%len(users)]
		post, names := s.factory.BuildPost(owner.ID)
		if err := s.posts.Create(ctx, post, names); err != nil {
			return res, fmt.Errorf("create post %d: %w", i+1, err)
		}
		res.Posts++
	}
	s.logger.InfoContext(ctx, "seeded posts", slog.Int("count", res.Posts))
	return res, nil
}

// Fixtures creates every user and post in fx. Posts are validated exactly
// like API input; the first invalid entry stops the run.
func (s *Seeder) Fixtures(ctx context.Context, fx *Fixtures) (Result, error) {
	var res Result
	for _, fu := range fx.Users {
		reg := validation.Registration{Username: fu.Username, Email: fu.Email, Password: fu.Password}
		if err := validation.ValidateRegistration(reg); err != nil {
			return res, fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		hash, err := s.factory.HashPassword(fu.Password)
		if err != nil {
			return res, err
		}
		user := &models.User{Username: fu.Username, Email: fu.Email, Password: hash}
		if err := s.users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		res.Users++

		for i, fp := range fu.Posts {
			_, err := s.service.Create(ctx, service.CreatePostInput{
				UserID: user.ID,
				Fields: fp.fields(),
				Tags:   tags.Of(fp.Tags...),
			})
			if err != nil {
				return res, fmt.Errorf("fixture user %q post %d: %w", fu.Username, i+1, err)
			}
			res.Posts++
		}
	}
	s.logger.InfoContext(ctx, "seeded fixtures", slog.Int("users", res.Users), slog.Int("posts", res.Posts))
	return res, nil
}

func (p FixturePost) fields() service.PostFields {
	return service.PostFields{
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Mood:           p.Mood,
		PositiveNote:   p.PositiveNote,
		NegativeNote:   p.NegativeNote,
		PhysicalEffort: p.PhysicalEffort,
		EconomicEffort: p.EconomicEffort,
		ActualCost:     p.ActualCost,
		MediaURL:       p.MediaURL,
	}
}
