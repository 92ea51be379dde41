package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"mediapull/internal/config"
	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/notifications"
	"mediapull/internal/pipeline"
)

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return fmt.Errorf("no ntfy topic configured (set notifications.ntfy_topic)")
			}
			svc := notifications.NewService(cfg.Notifications)
			if err := svc.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}

// notifyOutcome publishes the end of a run. Delivery problems are logged and
// never change the run's result.
func notifyOutcome(ctx context.Context, cfg config.Notifications, logger *slog.Logger, rawURL string, res pipeline.Result, runErr error) {
	svc := notifications.NewService(cfg)
	event := notifications.EventDownloadCompleted
	payload := notifications.Payload{
		"title": res.Title,
		"path":  res.OutputPath,
		"mode":  res.Mode.String(),
	}
	if runErr != nil {
		code, msg := failure.From(runErr)
		event = notifications.EventDownloadFailed
		payload = notifications.Payload{
			"title":   firstNonEmpty(res.Title, rawURL),
			"code":    string(code),
			"message": msg,
		}
	} else if len(res.OutputFiles) > 0 {
		payload["path"] = res.OutputPath + " (" + strconv.Itoa(len(res.OutputFiles)) + " chapters)"
	}
	if err := svc.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "download outcome was not pushed"),
			logging.String("event", string(event)),
		)
	}
}
