package root

import (
	"fmt"
	"log/slog"

	"github.com/dinerozz/focus-guard-backend/cmd/migrate"
	"github.com/dinerozz/focus-guard-backend/config"
	"github.com/dinerozz/focus-guard-backend/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focus-guard-backend",
	Short: "Focus guard intervention scheduler",
}

func GetRootCmd(config *config.Config, logger *slog.Logger) *cobra.Command {
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DB.User,
		config.DB.Password,
		config.DB.Host,
		config.DB.Port,
		config.DB.DBName,
		config.DB.SSLMode)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the scheduler and HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunServer(config, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(dbURL))

	return rootCmd
}
