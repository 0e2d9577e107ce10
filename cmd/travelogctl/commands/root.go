package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/AlbertoOrlando/travel-journal-app/internal/bootstrap"
	"github.com/AlbertoOrlando/travel-journal-app/internal/config"
	"github.com/AlbertoOrlando/travel-journal-app/internal/database"
	"github.com/AlbertoOrlando/travel-journal-app/internal/middleware"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	envName    string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "travelogctl",
	Short: "Administration tool for the travel journal backend",
	Long: `travelogctl manages the travel journal database.

Configuration is read the same way as the server: config.yml, the
config.<APP_ENV>.yml profile, .env and the environment.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := ""
		if verbose {
			level = "debug"
		}
		env := envName
		if env == "" {
			env = os.Getenv("APP_ENV")
		}
		middleware.Logger = middleware.NewLogger(env, level)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "Configuration profile (overrides APP_ENV)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func loadConfig() (*config.Config, error) {
	if envName != "" {
		if err := os.Setenv("APP_ENV", envName); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDB connects without applying the schema; every command decides what
// to run itself. Redis is only dialed when withRedis is set.
func openDB(ctx context.Context, withRedis bool) (*config.Config, *gorm.DB, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipSchema: true, SkipRedis: !withRedis})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, func() {
		_ = database.Close(db)
		if rdb != nil {
			_ = rdb.Close()
		}
	}, nil
}
