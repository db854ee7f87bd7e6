package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name       string
		tag        string
		customName string
		symbol     string
		wantName   string
		wantSymbol string
		wantErr    bool
	}{
		{name: "builtin", tag: "luz", wantName: "Luz", wantSymbol: "💡"},
		{name: "case and space", tag: " DirecTV ", wantName: "DirecTV", wantSymbol: "📺"},
		{name: "builtin ignores custom fields", tag: "agua", customName: "Acueducto", wantName: "Agua", wantSymbol: "💧"},
		{name: "custom", tag: "otro", customName: "Gimnasio", symbol: "🏋", wantName: "Gimnasio", wantSymbol: "🏋"},
		{name: "custom defaults", tag: "otro", wantName: "Otro", wantSymbol: "🔧"},
		{name: "unknown", tag: "gas", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCategory(tt.tag, tt.customName, tt.symbol)
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "category", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
			assert.Equal(t, tt.wantSymbol, c.Symbol())
			assert.True(t, c.Valid())
		})
	}
}

func TestKindsOrder(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 11)
	assert.Equal(t, KindAdmin, kinds[0])
	assert.Equal(t, KindOther, kinds[len(kinds)-1])
}

func TestLabel(t *testing.T) {
	o := Obligation{Category: MustBuiltin(KindAgua), DueDay: 25, Period: Bimonthly}
	assert.Equal(t, "💧 Agua (Bimestral)", o.Label())
	assert.Equal(t, "day 25 every 2 months", o.Period.Describe(o.DueDay))

	o.Period = Monthly
	assert.Equal(t, "💧 Agua", o.Label())
}

func TestValidate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := New(MustBuiltin(KindLuz), decimal.NewFromInt(85000), 18, Monthly, now)
	require.NoError(t, ok.Validate())
	assert.NotEmpty(t, ok.ID)
	assert.False(t, ok.Paid)

	tests := []struct {
		name  string
		mut   func(*Obligation)
		field string
	}{
		{"day zero", func(o *Obligation) { o.DueDay = 0 }, "dueDay"},
		{"day 32", func(o *Obligation) { o.DueDay = 32 }, "dueDay"},
		{"period 3", func(o *Obligation) { o.Period = 3 }, "periodMonths"},
		{"negative amount", func(o *Obligation) { o.Amount = decimal.NewFromInt(-1) }, "amount"},
		{"zero category", func(o *Obligation) { o.Category = Category{} }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ok
			tt.mut(&o)
			var verr *ValidationError
			require.True(t, errors.As(o.Validate(), &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPayThenRenew(t *testing.T) {
	o := Obligation{ID: "a", Category: MustBuiltin(KindAdmin), Amount: decimal.NewFromInt(350000), DueDay: 10, Period: Monthly}
	at := time.Date(2025, 1, 9, 15, 0, 0, 0, time.UTC)

	pay := PayPatch(at, decimal.NewFromInt(340000))
	require.False(t, pay.IsEmpty())
	paid := pay.Apply(o)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.PaidDate.Equal(at))
	assert.Equal(t, "340000", paid.PaidAmount.String())
	assert.False(t, o.Paid, "Apply must not mutate its input")

	renewed := RenewPatch().Apply(paid)
	assert.False(t, renewed.Paid)
	assert.Nil(t, renewed.PaidDate)
	assert.Equal(t, "350000", renewed.Amount.String())

	assert.True(t, Patch{}.IsEmpty())
}
