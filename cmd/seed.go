package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/paytrack/internal/store"

	"github.com/spf13/cobra"
)

var flagSeedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the example household bills",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&flagSeedForce, "force", false, "Replace existing bills")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	obs, err := s.st.Seed(ctx, s.clock.Now(), flagSeedForce)
	if errors.Is(err, store.ErrNotEmpty) {
		return errors.New("database already has bills; use --force to replace them")
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Loaded %d example bills\n", len(obs))
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}
