package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"+5", 0, false},
		{"", 0, false},
		{"10000000000000", MaxCents, true},
		{"10000000000000.01", 0, false},
		{"184467440737095516.17", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents() != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents(), err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseBalance(t *testing.T) {
	if m, err := ParseBalance(""); err != nil || !m.IsZero() {
		t.Fatalf("empty balance: got %v, %v", m, err)
	}
	if m, err := ParseBalance("0"); err != nil || !m.IsZero() {
		t.Fatalf("zero balance: got %v, %v", m, err)
	}
	if _, err := ParseBalance("-10000000000000.01"); err == nil {
		t.Fatal("balance beyond the supported range should be rejected")
	}
	if _, err := ParseBalance("-0.01"); err == nil {
		t.Fatal("negative opening balance should be rejected")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustMoney("500")
	b := MustMoney("200")

	if got := a.Sub(b).String(); got != "300.00" {
		t.Errorf("500 - 200 = %s, want 300.00", got)
	}
	if got := b.Sub(a); !got.IsNegative() || got.Cents() != -30000 {
		t.Errorf("200 - 500 = %s, want -300.00", got)
	}
	if got := a.Add(b).Cents(); got != 70000 {
		t.Errorf("500 + 200 = %d cents, want 70000", got)
	}
	if !NewMoneyFromCents(1999).Equal(MustMoney("19.99")) {
		t.Error("NewMoneyFromCents(1999) != 19.99")
	}
	if a.Cmp(b) <= 0 {
		t.Error("expected 500 > 200")
	}
	// 0.1 + 0.2 must be exact
	if got := MustMoney("0.1").Add(MustMoney("0.2")); !got.Equal(MustMoney("0.3")) {
		t.Errorf("0.1 + 0.2 = %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MustMoney("12.5")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"amount":"12.50"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var in struct {
		Amount Money `json:"amount"`
	}
	for _, raw := range []string{`{"amount":"7.25"}`, `{"amount":7.25}`} {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if in.Amount.Cents() != 725 {
			t.Fatalf("unmarshal %s: got %d cents", raw, in.Amount.Cents())
		}
	}
	if err := json.Unmarshal([]byte(`{"amount":"x"}`), &in); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}
