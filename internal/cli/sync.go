package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestsync/nestsync/internal/authflow"
	"github.com/nestsync/nestsync/internal/brightwheel"
	"github.com/nestsync/nestsync/internal/syncer"
)

// newSyncCmd creates and returns a new sync command
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download new activity photos and videos",
		Long: `Sync resumes the persisted session and walks each child's activity feed,
downloading photo and video attachments that are not already present
locally. Files land under <media_dir>/<Child Name>/<YYYY-MM>/. Rerunning
after an interrupted sync is safe: existing files are never re-downloaded.

Example:
  nestsync sync
  nestsync sync --dir ~/Pictures/daycare`,
		RunE: runSync,
	}

	cmd.Flags().String("dir", "", "Destination root (overrides media_dir from config)")
	return cmd
}

// runSync handles the sync command execution
func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.MediaDir = dir
	}

	mgr, err := newManager(cfg)
	if err != nil {
		return err
	}

	var stats *syncer.Stats
	err = mgr.Sync(cmd.Context(), func(ctx context.Context, svc brightwheel.Service) error {
		var runErr error
		stats, runErr = syncer.New(svc, syncer.Options{
			Root:     cfg.MediaDir,
			PageSize: cfg.PageSize,
		}).Run(ctx)
		return runErr
	})
	if err != nil {
		if errors.Is(err, authflow.ErrStateMismatch) {
			return fmt.Errorf("not logged in; run \"nestsync login\" first")
		}
		return err
	}

	if jsonOutput {
		printJSON(stats)
	} else {
		okLabel.Println("✓ Sync complete")
		fmt.Printf("Children: %d, scanned: %d, downloaded: %d, already present: %d\n",
			stats.Children, stats.Scanned, stats.Downloaded, stats.Skipped)
	}
	return nil
}
