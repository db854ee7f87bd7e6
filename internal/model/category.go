package model

import (
	"sort"
	"strings"
)

// Kind is the wire tag of a category. The set is closed: only the kinds
// listed in builtins plus KindOther are accepted.
type Kind string

const (
	KindLuz      Kind = "luz"
	KindAgua     Kind = "agua"
	KindAdmin    Kind = "admin"
	KindCuota    Kind = "cuota"
	KindBodega   Kind = "bodega"
	KindDirecTV  Kind = "directv"
	KindInternet Kind = "internet"
	KindTelefono Kind = "telefono"
	KindETB      Kind = "etb"
	KindSayco    Kind = "sayco"
	KindOther    Kind = "otro"
)

const (
	defaultCustomName   = "Otro"
	defaultCustomSymbol = "🔧"
)

type categoryInfo struct {
	name   string
	symbol string
}

var builtins = map[Kind]categoryInfo{
	KindLuz:      {"Luz", "💡"},
	KindAgua:     {"Agua", "💧"},
	KindAdmin:    {"Administración", "🏢"},
	KindCuota:    {"Cuota Local", "🏠"},
	KindBodega:   {"Bodega", "📦"},
	KindDirecTV:  {"DirecTV", "📺"},
	KindInternet: {"Internet", "🌐"},
	KindTelefono: {"Teléfono", "📱"},
	KindETB:      {"ETB", "📞"},
	KindSayco:    {"Sayco", "🎵"},
}

// Category selects a display name and symbol. Built-in kinds take both from
// a fixed table; KindOther carries its own.
type Category struct {
	Kind   Kind
	custom categoryInfo
}

// Builtin returns the category for a built-in kind.
func Builtin(k Kind) (Category, error) {
	if _, ok := builtins[k]; !ok {
		return Category{}, &ValidationError{Field: "category", Value: string(k), Reason: "unknown category"}
	}
	return Category{Kind: k}, nil
}

// Custom returns a free-form category. Empty name or symbol fall back to
// the generic "Otro" values.
func Custom(name, symbol string) Category {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" {
		name = defaultCustomName
	}
	if symbol == "" {
		symbol = defaultCustomSymbol
	}
	return Category{Kind: KindOther, custom: categoryInfo{name: name, symbol: symbol}}
}

// ParseCategory resolves a wire tag. The custom fields are only read for
// KindOther.
func ParseCategory(tag, customName, customSymbol string) (Category, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(tag)))
	if k == KindOther {
		return Custom(customName, customSymbol), nil
	}
	return Builtin(k)
}

// MustBuiltin is Builtin for package-level tables; it panics on unknown kinds.
func MustBuiltin(k Kind) Category {
	c, err := Builtin(k)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the display name.
func (c Category) Name() string {
	if c.Kind == KindOther {
		return c.custom.name
	}
	return builtins[c.Kind].name
}

// Symbol returns the display icon.
func (c Category) Symbol() string {
	if c.Kind == KindOther {
		return c.custom.symbol
	}
	return builtins[c.Kind].symbol
}

// IsCustom reports whether the category carries its own name and symbol.
func (c Category) IsCustom() bool { return c.Kind == KindOther }

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	if c.Kind == KindOther {
		return c.custom.name != ""
	}
	_, ok := builtins[c.Kind]
	return ok
}

func (c Category) String() string {
	return c.Symbol() + " " + c.Name()
}

// Kinds lists every accepted wire tag, built-ins sorted by tag with
// KindOther last.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(builtins)+1)
	for k := range builtins {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return append(kinds, KindOther)
}
