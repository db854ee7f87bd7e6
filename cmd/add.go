package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagAddCategory    string
	flagAddName        string
	flagAddSymbol      string
	flagAddAmount      string
	flagAddDay         int
	flagAddPeriod      int
	flagAddID          string
	flagAddInteractive bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recurring bill",
	Example: `  paytrack add --category luz --amount 85000 --day 18
  paytrack add --category agua --amount 45000 --day 25 --period 2
  paytrack add --category otro --name Gym --symbol 🏋️ --day 5
  paytrack add -i`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", "", "Category: "+kindList())
	addCmd.Flags().StringVar(&flagAddName, "name", "", "Display name for category otro")
	addCmd.Flags().StringVar(&flagAddSymbol, "symbol", "", "Icon for category otro")
	addCmd.Flags().StringVarP(&flagAddAmount, "amount", "a", "", "Amount due each cycle")
	addCmd.Flags().IntVarP(&flagAddDay, "day", "d", 0, "Day of month the bill is due (1-31)")
	addCmd.Flags().IntVar(&flagAddPeriod, "period", 1, "Months between bills: 1 or 2")
	addCmd.Flags().StringVar(&flagAddID, "id", "", "Explicit id (default: random)")
	addCmd.Flags().BoolVarP(&flagAddInteractive, "interactive", "i", false, "Fill the bill in with a form")
	rootCmd.AddCommand(addCmd)
}

func kindList() string {
	kinds := model.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// addValues is the form-friendly view of the add flags.
type addValues struct {
	Category string
	Name     string
	Symbol   string
	Amount   string
	Day      string
	Period   string
}

func addForm(v *addValues) *huh.Form {
	kindOpts := make([]huh.Option[string], 0, len(model.Kinds()))
	for _, k := range model.Kinds() {
		label := string(k)
		if c, err := model.Builtin(k); err == nil {
			label = c.String()
		} else if k == model.KindOther {
			label = "🔧 Otro (custom)"
		}
		kindOpts = append(kindOpts, huh.NewOption(label, string(k)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Category").Options(kindOpts...).Value(&v.Category),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.Name),
			huh.NewInput().Title("Symbol").Placeholder("🔧").Value(&v.Symbol),
		).WithHideFunc(func() bool { return v.Category != string(model.KindOther) }),
		huh.NewGroup(
			huh.NewInput().Title("Amount").Placeholder("0").Value(&v.Amount).
				Validate(func(s string) error { _, err := parseAmount(s); return err }),
			huh.NewInput().Title("Due day (1-31)").Value(&v.Day).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 31 {
						return errors.New("enter a day between 1 and 31")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Cadence").
				Options(huh.NewOption("Monthly", "1"), huh.NewOption("Every 2 months", "2")).
				Value(&v.Period),
		),
	)
}

// buildObligation turns flag or form values into a validated obligation.
func buildObligation(v addValues, s *session) (model.Obligation, error) {
	cat, err := model.ParseCategory(v.Category, v.Name, v.Symbol)
	if err != nil {
		return model.Obligation{}, err
	}
	amount, err := parseAmount(v.Amount)
	if err != nil {
		return model.Obligation{}, err
	}
	day, err := strconv.Atoi(strings.TrimSpace(v.Day))
	if err != nil {
		return model.Obligation{}, fmt.Errorf("invalid due day %q", v.Day)
	}
	period, err := strconv.Atoi(strings.TrimSpace(v.Period))
	if err != nil {
		return model.Obligation{}, fmt.Errorf("invalid period %q", v.Period)
	}

	o := model.New(cat, amount, day, model.Period(period), s.clock.Now())
	return o, o.Validate()
}

func runAdd(cmd *cobra.Command, _ []string) error {
	v := addValues{
		Category: flagAddCategory,
		Name:     flagAddName,
		Symbol:   flagAddSymbol,
		Amount:   flagAddAmount,
		Day:      strconv.Itoa(flagAddDay),
		Period:   strconv.Itoa(flagAddPeriod),
	}

	if flagAddInteractive {
		if v.Day == "0" {
			v.Day = ""
		}
		if err := addForm(&v).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
	} else if flagAddCategory == "" {
		return errors.New("--category is required (or use -i)")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := buildObligation(v, s)
	if err != nil {
		return err
	}
	if flagAddID != "" {
		o.ID = flagAddID
	}

	ctx := cmd.Context()
	added, err := s.st.Add(ctx, o)
	if errors.Is(err, store.ErrExists) {
		return fmt.Errorf("a bill with id %q already exists", o.ID)
	}
	if err != nil {
		return err
	}
	o = added

	fmt.Printf("  Added %s  %s, %s  (id %s)\n",
		o.Label(), cli.FormatAmount(o.Amount), o.Period.Describe(o.DueDay), cli.ShortID(o.ID))
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}
