package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagDeleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a bill",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	o, err := s.st.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	if !flagDeleteYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s?", o.Label())).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil || !confirmed {
			fmt.Println("  Kept.")
			return nil
		}
	}

	if err := s.st.Delete(ctx, o.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", o.Label())
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}
