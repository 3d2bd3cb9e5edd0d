package units

import (
	"errors"
	"testing"

	"github.com/san-kum/fmukit/internal/fmi"
)

func TestNewSeedsDefaults(t *testing.T) {
	c := New()

	for _, name := range []string{"", "1"} {
		if _, ok := c.Lookup(name); !ok {
			t.Errorf("expected unit %q to be pre-registered", name)
		}
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 units, got %d", c.Len())
	}
}

func TestResolveCommonUnit(t *testing.T) {
	c := New()

	u, err := c.Resolve("N")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if u.Kg != 1 || u.M != 1 || u.S != -2 {
		t.Errorf("expected kg*m/s2, got %+v", u)
	}
	if _, ok := c.Lookup("N"); !ok {
		t.Error("expected N to be registered after resolve")
	}
}

func TestResolveUnknownUnit(t *testing.T) {
	c := New()

	_, err := c.Resolve("furlong")
	if !errors.Is(err, fmi.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if c.Len() != 2 {
		t.Error("catalog changed after failed resolve")
	}
}

func TestAddOverridesCommon(t *testing.T) {
	c := New()
	c.Add(Unit{Name: "J", Kg: 1, M: 2, S: -2})

	u, err := c.Resolve("J")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if u.M != 2 {
		t.Errorf("expected m=2, got %d", u.M)
	}
}

func TestExponents(t *testing.T) {
	tests := []struct {
		unit Unit
		want []Exponent
	}{
		{Unit{Name: "1"}, nil},
		{Unit{Name: "N", Kg: 1, M: 1, S: -2}, []Exponent{{"kg", 1}, {"m", 1}, {"s", -2}}},
		{Unit{Name: "rad/s", Rad: 1, S: -1}, []Exponent{{"s", -1}, {"rad", 1}}},
	}

	for _, tt := range tests {
		got := tt.unit.Exponents()
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.unit.Name, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: expected %v, got %v", tt.unit.Name, tt.want, got)
			}
		}
	}
}

func TestAllSortedByName(t *testing.T) {
	c := New()
	c.Resolve("m")
	c.Resolve("kg")

	all := c.All()
	names := make([]string, len(all))
	for i, u := range all {
		names[i] = u.Name
	}
	want := []string{"", "1", "kg", "m"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
