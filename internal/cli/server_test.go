package cli

import "testing"

func TestResolvePort(t *testing.T) {
	cases := []struct {
		name     string
		flagPort string
		cfgPort  string
		want     string
	}{
		{"flag wins", "9000", "7000", "9000"},
		{"config when flag empty", "", "7000", "7000"},
		{"default when both empty", "", "", "8080"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolvePort(tc.flagPort, tc.cfgPort); got != tc.want {
				t.Errorf("resolvePort(%q, %q) = %q, want %q", tc.flagPort, tc.cfgPort, got, tc.want)
			}
		})
	}
}
