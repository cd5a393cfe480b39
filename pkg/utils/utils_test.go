package utils

import (
	"math"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"", false},
		{"ada@example.com", true},
		{"Ada <ada@example.com>", false},
		{"not-an-email", false},
	}
	for _, c := range cases {
		err := ValidateEmail(c.email)
		if (err == nil) != c.ok {
			t.Errorf("ValidateEmail(%q) = %v", c.email, err)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Errorf("got %q", got)
	}
}

func TestValidateSettingKey(t *testing.T) {
	for _, k := range []string{"color_primary", "advisory_groups_12", "feature.flag-x"} {
		if err := ValidateSettingKey(k); err != nil {
			t.Errorf("%q: %v", k, err)
		}
	}
	for _, k := range []string{"", "with space", "slash/key", string(make([]byte, 200))} {
		if err := ValidateSettingKey(k); err == nil {
			t.Errorf("%q: expected error", k)
		}
	}
}

func TestValidateHours(t *testing.T) {
	for _, h := range []float64{0.5, 1, MaxHours} {
		if err := ValidateHours(h); err != nil {
			t.Errorf("%v: %v", h, err)
		}
	}
	for _, h := range []float64{0, -1, MaxHours + 1, math.NaN(), math.Inf(1)} {
		if err := ValidateHours(h); err == nil {
			t.Errorf("%v: expected error", h)
		}
	}
}
