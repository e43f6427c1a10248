package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAmount_MinorUnits(t *testing.T) {
	cases := []struct {
		in   Amount
		want int64
	}{
		{"499.00", 49900},
		{"499", 49900},
		{"4.99", 499},
		{"4.9", 490},
		{"0.01", 1},
		{".5", 50},
		{"10.500", 1050},
		{"0", 0},
		{".50", 50},
		{"5.", 500},
		{"0499.00", 49900},
		{"1e3", 100000},
	}
	for _, tc := range cases {
		got, err := tc.in.MinorUnits()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestAmount_MinorUnitsRejects(t *testing.T) {
	for _, in := range []Amount{"", ".", "-1.00", "4.999", "1e-3", "abc", "1.2.3"} {
		if _, err := in.MinorUnits(); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("%q: expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestAmount_UnmarshalNumberAndString(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 499.00, "b": "12.50", "c": null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "499.00" {
		t.Errorf("expected 499.00, got %q", v.A)
	}
	if v.B != "12.50" {
		t.Errorf("expected 12.50, got %q", v.B)
	}
	if v.C != "" {
		t.Errorf("expected empty amount for null, got %q", v.C)
	}
}

func TestAmount_MarshalKeepsMajorUnits(t *testing.T) {
	b, err := json.Marshal(PaymentOrder{OrderID: "order_1", Amount: "499.00", Currency: "INR"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"order_id":"order_1","amount":499.00,"currency":"INR"}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}
}

func TestParseAmount_Canonical(t *testing.T) {
	cases := map[string]Amount{
		".50":     "0.50",
		"5.":      "5.00",
		"0499.00": "499.00",
		"499":     "499.00",
		"10.500":  "10.50",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestAmount_LooseBackendFormsRoundTrip(t *testing.T) {
	for _, in := range []string{`".50"`, `"5."`, `"0499.00"`} {
		var a Amount
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("%s: unmarshal: %v", in, err)
		}
		b, err := json.Marshal(PaymentOrder{OrderID: "order_1", Amount: a, Currency: "INR"})
		if err != nil {
			t.Fatalf("%s: marshal: %v", in, err)
		}
		if !json.Valid(b) {
			t.Fatalf("%s: invalid json %s", in, b)
		}
	}

	// Values built in code are normalised on the way out too.
	b, err := json.Marshal(Amount("0499.0"))
	if err != nil || string(b) != "499.00" {
		t.Fatalf("expected 499.00, got %s (%v)", b, err)
	}
}
