package command

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgard/tgcollector/internal/export"
)

// NewExportCmd exports the messages of one chat as text.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the messages of a chat",
		Example: "  collector export --chat -5148403988 --days 7\n" +
			"  collector export --chat -5148403988 --from 2025-01-01 --to 2025-01-31 --out jan.txt",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chatFlag, _ := cmd.Flags().GetString("chat")
			days, _ := cmd.Flags().GetInt("days")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			out, _ := cmd.Flags().GetString("out")

			chatID, err := export.ParseChatID(chatFlag)
			if err != nil {
				return err
			}

			var period export.Period
			switch {
			case days > 0 && (from != "" || to != ""):
				return errors.New("use either --days or --from/--to")
			case days > 0:
				period, err = export.LastDays(time.Now(), days)
			case from != "" && to != "":
				period, err = export.ParseDateRange(from, to)
			default:
				return errors.New("either --days or both --from and --to are required")
			}
			if err != nil {
				return err
			}

			store, cleanup, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := export.Export(cmd.Context(), store, chatID, period)
			if err != nil {
				return err
			}
			if len(res.Messages) == 0 {
				return fmt.Errorf("no messages found in chat %d for this period", res.ChatID)
			}

			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return nil
			}
			if err := os.WriteFile(out, []byte(res.Text+"\n"), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d messages from chat %d to %s\n", len(res.Messages), res.ChatID, out)
			return nil
		},
	}

	cmd.Flags().String("chat", "", "chat id (a positive id also tries the negated group id)")
	cmd.Flags().Int("days", 0, "export the last N days")
	cmd.Flags().String("from", "", "start date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "end date, YYYY-MM-DD")
	cmd.Flags().String("out", "", "write to this file instead of stdout")
	cmd.Flags().String("db", "", "database path (overrides database.path)")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}
