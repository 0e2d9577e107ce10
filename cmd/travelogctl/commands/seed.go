package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlbertoOrlando/travel-journal-app/internal/database"
	"github.com/AlbertoOrlando/travel-journal-app/internal/middleware"
	"github.com/AlbertoOrlando/travel-journal-app/internal/seed"

	"github.com/spf13/cobra"
)

var (
	seedUsers    int
	seedPosts    int
	seedFixtures string
	seedRandom   int64
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with sample users and posts",
	Long: `Seed the database either with generated data or with a YAML fixture file.

Generated users all share the password "` + seed.DefaultPassword + `".

Examples:
  travelogctl seed --users 5 --posts 40
  travelogctl seed --fixtures testdata/journal.yml
  travelogctl seed --users 2 --posts 10 --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFixtures == "" && seedUsers <= 0 && seedPosts <= 0 {
			return errors.New("nothing to seed: pass --users/--posts or --fixtures")
		}

		ctx := cmd.Context()
		// Redis is dialed so new tags invalidate the cached tag list.
		cfg, db, closeDB, err := openDB(ctx, true)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}

		seeder := seed.NewSeeder(db, seed.Options{Seed: seedRandom, Logger: middleware.Logger})

		var res seed.Result
		if seedFixtures != "" {
			fx, err := seed.LoadFixturesFile(seedFixtures)
			if err != nil {
				return err
			}
			res, err = seeder.Fixtures(ctx, fx)
			if err != nil {
				return err
			}
		} else {
			res, err = seeder.Random(ctx, seedUsers, seedPosts)
			if err != nil {
				return err
			}
		}

		middleware.Logger.Info("seeding complete",
			slog.Int("users", res.Users), slog.Int("posts", res.Posts))

		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{
				"users": res.Users,
				"posts": res.Posts,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d users and %d posts\n", res.Users, res.Posts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedUsers, "users", 0, "Number of users to generate")
	seedCmd.Flags().IntVar(&seedPosts, "posts", 0, "Number of posts to generate")
	seedCmd.Flags().StringVar(&seedFixtures, "fixtures", "", "YAML fixture file to load instead of generated data")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 0, "Random seed for generated data (0 = random)")
}
