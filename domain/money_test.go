package domain

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		raw     string
		want    Money
		wantErr bool
	}{
		{raw: "10.00", want: 1000},
		{raw: "USD 10.50", want: 1050},
		{raw: "$10.50", want: 1050},
		{raw: "USD$10.50", want: 1050},
		{raw: "  10  ", want: 1000},
		{raw: "0.01", want: 1},
		{raw: "", wantErr: true},
		{raw: "-5.00", wantErr: true},
		{raw: "10.123", wantErr: true},
		{raw: "ten", wantErr: true},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.raw)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMoney(%q): expected error, got %v", c.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error: %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMoney(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := Money(1050).String(); got != "10.50" {
		t.Errorf("String() = %q, want %q", got, "10.50")
	}
	if got := Money(-1050).String(); got != "-10.50" {
		t.Errorf("String() = %q, want %q", got, "-10.50")
	}
	if got := Money(5).String(); got != "0.05" {
		t.Errorf("String() = %q, want %q", got, "0.05")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := Money(100).Add(Money(50)); got != Money(150) {
		t.Errorf("Add = %v, want 150", got)
	}
	if got := Money(100).Mul(3); got != Money(300) {
		t.Errorf("Mul = %v, want 300", got)
	}
	if ZeroMoney.Sign() != 0 || Money(1).Sign() != 1 || Money(-1).Sign() != -1 {
		t.Errorf("Sign() mismatched expectations")
	}
}
