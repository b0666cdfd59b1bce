package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
	"github.com/edgard/tgcollector/internal/export"
	"github.com/edgard/tgcollector/internal/logger"
)

// NewChatsCmd lists the collected group chats.
func NewChatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List collected group chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			chats, err := store.ListChats(cmd.Context())
			if err != nil {
				return err
			}
			chats = export.FilterChats(chats)
			if len(chats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chats collected yet.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), export.FormatChatList(chats))
			return nil
		},
	}
	cmd.Flags().String("db", "", "database path (overrides database.path)")
	return cmd
}

// openStore opens the configured database for read-only commands.
func openStore(cmd *cobra.Command) (database.Store, func(), error) {
	cfg, err := config.LoadOffline(configPath(cmd))
	if err != nil {
		return nil, nil, err
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	store := database.NewStore(db, log)
	return store, func() { _ = store.Close() }, nil
}
