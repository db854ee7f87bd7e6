package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagEditCategory string
	flagEditName     string
	flagEditSymbol   string
	flagEditAmount   string
	flagEditDay      int
	flagEditPeriod   int
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a bill's category, amount or schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&flagEditCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVar(&flagEditName, "name", "", "New display name (category otro)")
	editCmd.Flags().StringVar(&flagEditSymbol, "symbol", "", "New icon (category otro)")
	editCmd.Flags().StringVarP(&flagEditAmount, "amount", "a", "", "New amount")
	editCmd.Flags().IntVarP(&flagEditDay, "day", "d", 0, "New due day (1-31)")
	editCmd.Flags().IntVar(&flagEditPeriod, "period", 0, "New period in months: 1 or 2")
	rootCmd.AddCommand(editCmd)
}

// editPatch builds a patch from the flags the user actually set.
func editPatch(cmd *cobra.Command, current model.Obligation) (model.Patch, error) {
	var p model.Patch
	flags := cmd.Flags()

	if flags.Changed("category") || flags.Changed("name") || flags.Changed("symbol") {
		kind := string(current.Category.Kind)
		if flags.Changed("category") {
			kind = flagEditCategory
		}
		name, symbol := flagEditName, flagEditSymbol
		if current.Category.IsCustom() {
			if !flags.Changed("name") {
				name = current.Category.Name()
			}
			if !flags.Changed("symbol") {
				symbol = current.Category.Symbol()
			}
		}
		cat, err := model.ParseCategory(kind, name, symbol)
		if err != nil {
			return p, err
		}
		p.Category = &cat
	}
	if flags.Changed("amount") {
		amount, err := parseAmount(flagEditAmount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if flags.Changed("day") {
		p.DueDay = &flagEditDay
	}
	if flags.Changed("period") {
		period := model.Period(flagEditPeriod)
		p.Period = &period
	}
	if p.IsEmpty() {
		return p, errors.New("nothing to change: pass --amount, --day, --period or --category")
	}
	return p, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	patch, err := editPatch(cmd, o)
	if err != nil {
		return err
	}
	updated, err := s.st.Update(ctx, o.ID, patch)
	if err != nil {
		return err
	}

	fmt.Printf("  Updated %s  %s, %s\n",
		updated.Label(), cli.FormatAmount(updated.Amount), updated.Period.Describe(updated.DueDay))
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}
