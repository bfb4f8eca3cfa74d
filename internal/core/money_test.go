package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"whole amount", "120000", 120000_00, false},
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"rounds half up on third decimal", "12.345", 1234, false},
		{"rounds up", "12.346", 1235, false},
		{"zero is accepted", "0", 0, false},
		{"negative accepted for derived figures", "-45.5", -4550, false},
		{"trims whitespace", " 7 ", 700, false},
		{"empty", "", 0, true},
		{"not a number", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"bare dot", ".", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimal(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseDecimal(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{120000_00, "120000"},
		{1250, "12.50"},
		{-4550, "-45.50"},
		{5, "0.05"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Decimal(); got != tt.want {
			t.Errorf("Decimal(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 100, 1250, 500000_00} {
		b, err := json.Marshal(Money{Cents: cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", cents, err)
		}
		var m Money
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if m.Cents != cents {
			t.Errorf("round trip %d -> %s -> %d", cents, b, m.Cents)
		}
	}

	// Quoted numbers appear in hand-edited backup files.
	var m Money
	if err := json.Unmarshal([]byte(`"12.5"`), &m); err != nil || m.Cents != 1250 {
		t.Errorf("quoted amount = %d, %v", m.Cents, err)
	}
}
