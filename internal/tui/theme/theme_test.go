package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("no-such-theme").Name; got != FlexokiDark.Name {
		t.Errorf("ByName(unknown) = %q, want %q", got, FlexokiDark.Name)
	}
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Errorf("ByName(tokyo-night) = %q", got)
	}
}

func TestKnownAndNames(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names() = %v", names)
	}
	for _, n := range names {
		if !Known(n) {
			t.Errorf("Known(%q) = false", n)
		}
	}
	if Known("solarized") {
		t.Error("Known(solarized) = true")
	}
}

func TestStatusColor(t *testing.T) {
	th := FlexokiDark
	tests := map[string]string{
		"paid":      string(th.Green),
		"overdue":   string(th.Red),
		"due_today": string(th.Orange),
		"urgent":    string(th.Yellow),
		"pending":   string(th.TextPrimary),
	}
	for status, want := range tests {
		if got := string(th.StatusColor(status)); got != want {
			t.Errorf("StatusColor(%q) = %q, want %q", status, got, want)
		}
	}
}
