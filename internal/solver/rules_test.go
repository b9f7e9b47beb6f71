package solver

import (
	"errors"
	"testing"
)

func TestParseRules(t *testing.T) {
	got, err := ParseRules([]string{"walls", " Rows "})
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if got != RuleWalls|RuleRows {
		t.Errorf("ParseRules() = %v, want walls,rows", got)
	}

	if _, err := ParseRules([]string{"mirrors"}); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("ParseRules(mirrors) error = %v, want ErrUnknownRule", err)
	}

	got, err = ParseRules(nil)
	if err != nil || got != 0 {
		t.Errorf("ParseRules(nil) = %v, %v; want none", got, err)
	}
}

func TestRules_String(t *testing.T) {
	if s := AllRules.String(); s != "walls,emitters,receivers,rows" {
		t.Errorf("AllRules.String() = %q", s)
	}
	if s := Rules(0).String(); s != "none" {
		t.Errorf("Rules(0).String() = %q, want none", s)
	}
}
