package main

import (
	"context"
	"fmt"
	"os"
	"time"

	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var timeout time.Duration

// rootCmd bcrypts passwords that were loaded into the users table as plaintext
var rootCmd = &cobra.Command{
	Use:   "hashpassword <user>...",
	Short: "Hash plaintext passwords stored in the users table",
	Long: `Replace a plaintext password column with its bcrypt hash.

Each argument is a user id, email or username. Users whose password is
already a bcrypt hash are left untouched.`,
	Example: `  hashpassword alice@example.com
  hashpassword 7f3c0a9e4b2d4c1e8f6a5b3c2d1e0f9a bob`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall time limit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// Hashing needs neither tokens nor a blacklist.
	auth := identityapp.NewAuthService(persistence.NewGormUserRepository(db.DB), nil, nil, nil, log)

	var failed int
	for _, lookup := range args {
		changed, err := auth.HashStoredPassword(ctx, lookup)
		switch {
		case err != nil:
			failed++
			log.Error("Could not hash password", zap.String("user", lookup), zap.Error(err))
		case changed:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: hashed\n", lookup)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: already hashed\n", lookup)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d users failed", failed, len(args))
	}
	return nil
}
