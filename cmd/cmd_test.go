package cmd

import (
	"strings"
	"testing"

	"github.com/theirongolddev/paytrack/internal/model"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"45000", "45000", false},
		{"45,000", "45000", false},
		{"$1,250.50", "1250.5", false},
		{"", "0", false},
		{"abc", "", true},
		{"-10", "", true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got.String() != tt.want {
			t.Errorf("parseAmount(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "127.0.0.1:9000", "--detach=true"})
	if want := "daemon --addr 127.0.0.1:9000"; strings.Join(got, " ") != want {
		t.Fatalf("filterDetachArg = %v, want %s", got, want)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ghp_abcdefghijklmnopqrstuvwxyz", "ghp_abcd...wxyz"},
		{"short1", "shor..."},
		{"abc", "****"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.in); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEditPatchOnlyChangedFlags(t *testing.T) {
	current := model.Obligation{
		ID:       "x",
		Category: model.Custom("Gimnasio", "🏋"),
		Amount:   decimal.NewFromInt(90000),
		DueDay:   5,
		Period:   model.Monthly,
	}

	if _, err := editPatch(editCmd, current); err == nil {
		t.Fatal("no flags should be an error")
	}

	if err := editCmd.Flags().Set("amount", "95,000"); err != nil {
		t.Fatal(err)
	}
	if err := editCmd.Flags().Set("symbol", "💪"); err != nil {
		t.Fatal(err)
	}
	p, err := editPatch(editCmd, current)
	if err != nil {
		t.Fatal(err)
	}
	if p.Amount == nil || p.Amount.String() != "95000" {
		t.Errorf("amount = %v, want 95000", p.Amount)
	}
	if p.DueDay != nil || p.Period != nil {
		t.Error("unset flags must stay nil")
	}
	if p.Category == nil || p.Category.Name() != "Gimnasio" || p.Category.Symbol() != "💪" {
		t.Errorf("category = %v, want the custom name kept with the new symbol", p.Category)
	}
}
