package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dwizi/esg-advisor/internal/app"
	"github.com/dwizi/esg-advisor/internal/config"
)

func newAskCommand(logger *slog.Logger) *cobra.Command {
	var fromStdin bool
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run the reply pipeline once and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				message = string(data)
			}
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("message is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := config.FromEnv()
			sqlStore, err := app.OpenStore(ctx, cfg)
			if err != nil {
				logger.Warn("summary store unavailable, answering without summaries", "error", err, "db_path", cfg.DBPath)
				sqlStore = nil
			} else {
				defer sqlStore.Close()
			}

			pipeline, err := app.NewPipeline(cfg, sqlStore, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pipeline.ProduceReply(ctx, message))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the message from standard input")
	return cmd
}
