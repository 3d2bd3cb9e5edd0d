package fmi

import (
	"errors"
	"testing"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Real.String(), "Real"},
		{String.String(), "String"},
		{CalculatedParameter.String(), "calculatedParameter"},
		{Tunable.String(), "tunable"},
		{Approx.String(), "approx"},
		{StepFailed.String(), "stepFailed"},
		{Pending.String(), "Pending"},
		{Status(42).String(), "Status(42)"},
		{FMI3.String(), "3.0"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for c := Local; c <= Independent; c++ {
		got, err := ParseCausality(c.String())
		if err != nil || got != c {
			t.Errorf("causality %v: got %v, %v", c, got, err)
		}
	}
	for v := Continuous; v <= Discrete; v++ {
		got, err := ParseVariability(v.String())
		if err != nil || got != v {
			t.Errorf("variability %v: got %v, %v", v, got, err)
		}
	}
	for i := InitialNone; i <= Calculated; i++ {
		got, err := ParseInitial(i.String())
		if err != nil || got != i {
			t.Errorf("initial %v: got %v, %v", i, got, err)
		}
	}

	if _, err := ParseCausality("sideways"); err == nil {
		t.Error("expected error for unknown causality")
	}
	if s, err := ParseStandard("fmi3"); err != nil || s != FMI3 {
		t.Errorf("expected FMI3, got %v, %v", s, err)
	}
	for _, m := range []Mode{CoSimulation, ModelExchange} {
		if got, err := ParseMode(m.String()); err != nil || got != m {
			t.Errorf("mode %v: got %v, %v", m, got, err)
		}
	}
	if m, err := ParseMode("me"); err != nil || m != ModelExchange {
		t.Errorf("expected ModelExchange, got %v, %v", m, err)
	}
	if _, err := ParseMode("batch"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSchemaDefaults(t *testing.T) {
	if !Local.IsDefault() || Output.IsDefault() {
		t.Error("local is the only default causality")
	}
	if !Continuous.IsDefault() || Fixed.IsDefault() {
		t.Error("continuous is the only default variability")
	}
	if !InitialNone.IsDefault() || Exact.IsDefault() {
		t.Error("none is the only default initial")
	}
}

func TestErrorMatchesKind(t *testing.T) {
	err := NewError(ErrDuplicateName, "register", "x", "")

	if !errors.Is(err, ErrDuplicateName) {
		t.Error("expected errors.Is to match the kind")
	}
	if errors.Is(err, ErrUnknownUnit) {
		t.Error("unexpected match on a different kind")
	}
	if err.Error() != `register: fmi: duplicate name "x"` {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestStatusValid(t *testing.T) {
	if !Pending.Valid() || Status(-1).Valid() || Status(6).Valid() {
		t.Error("status validity is wrong")
	}
	if !ErrorState.Terminal() || StepFailed.Terminal() {
		t.Error("only error and fatal are terminal")
	}
}
