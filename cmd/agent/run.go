package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/classmark/classmark/internal/agent/camera"
	"github.com/classmark/classmark/internal/agent/capture"
	agentconfig "github.com/classmark/classmark/internal/agent/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capture session until interrupted",
	Long: `Starts the capture loop: frames are sampled from the camera, faces
resolved against the reference set, and attendance reported to the
server. Runs until SIGINT/SIGTERM.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func newFrameSource(cfg agentconfig.Config) (camera.FrameSource, error) {
	switch {
	case cfg.Camera.SnapshotURL != "":
		return camera.NewHTTPSource(cfg.Camera.SnapshotURL, cfg.Camera.Timeout), nil
	case cfg.Camera.FrameDir != "":
		return camera.NewDirSource(cfg.Camera.FrameDir, true)
	default:
		return nil, fmt.Errorf("no camera configured: set camera.snapshot_url or camera.frame_dir")
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	source, err := newFrameSource(cfg)
	if err != nil {
		return err
	}

	embProvider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	q, err := openQueue(cfg)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}

	session := capture.NewSession(source, embProvider, newSyncClient(cfg), q, logger, capture.Config{
		ScanInterval: cfg.Capture.ScanInterval,
		Cooldown:     cfg.Capture.Cooldown,
		Threshold:    cfg.Capture.Threshold,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logger.Info("capture session running", slog.String("server", cfg.Server.URL))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	session.Stop()

	if pending := q.Len(); pending > 0 {
		logger.Info("events remain queued", slog.Int("pending", pending))
	}

	return nil
}
