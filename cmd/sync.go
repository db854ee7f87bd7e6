package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/paytrack/internal/remote"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Share bills through a GitHub repository",
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace local bills with the shared document",
	RunE:  runSyncPull,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write local bills to the shared document",
	RunE:  runSyncPush,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync configuration and last sync",
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

// explainSyncError adds a hint for the failures a user can fix.
func explainSyncError(err error) error {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return fmt.Errorf("%w (check the token's repo scope)", err)
	case errors.Is(err, remote.ErrNotFound):
		return fmt.Errorf("%w (run `paytrack sync push` to create it)", err)
	case errors.Is(err, remote.ErrRateLimited):
		return fmt.Errorf("%w (try again later)", err)
	case errors.Is(err, remote.ErrConflict):
		return fmt.Errorf("%w (someone else changed the document; pull first)", err)
	}
	return err
}

func runSyncPull(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	syncer, client, err := newSyncer(s.cfg, s.st)
	if err != nil {
		return err
	}
	n, err := syncer.Pull(cmd.Context())
	if err != nil {
		return explainSyncError(err)
	}
	fmt.Printf("  Pulled %d bills from %s\n", n, client.Location())
	return nil
}

func runSyncPush(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	syncer, client, err := newSyncer(s.cfg, s.st)
	if err != nil {
		return err
	}
	if err := syncer.Push(cmd.Context()); err != nil {
		return explainSyncError(err)
	}
	fmt.Printf("  Pushed to %s\n", client.Location())
	return nil
}

func runSyncStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.cfg.SyncEnabled() {
		fmt.Println("  Sync: not configured")
		fmt.Println("  Set [sync] owner/repo in the config and a token (or PAYTRACK_GITHUB_TOKEN).")
		return nil
	}
	_, client, err := newSyncer(s.cfg, s.st)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	version, err := s.st.Meta(ctx, remote.MetaVersion)
	if err != nil {
		return err
	}
	syncedAt, err := s.st.Meta(ctx, remote.MetaSyncedAt)
	if err != nil {
		return err
	}

	fmt.Printf("  Document:  %s\n", client.Location())
	if syncedAt == "" {
		fmt.Println("  Last sync: never")
		return nil
	}
	if t, err := time.Parse(time.RFC3339, syncedAt); err == nil {
		syncedAt = t.Local().Format("Jan 2 15:04")
	}
	fmt.Printf("  Last sync: %s\n", syncedAt)
	if len(version) > 12 {
		version = version[:12]
	}
	fmt.Printf("  Version:   %s\n", version)
	return nil
}
