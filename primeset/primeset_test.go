package primeset

import "testing"

func TestIsPrime(t *testing.T) {
	o := New()
	cases := map[string]bool{
		"2":  true,
		"3":  true,
		"4":  false,
		"17": true,
		"18": false,
		"1":  false,
		"0":  false,
		"97": true,
		"abc": false,
		"":   false,
	}
	for id, want := range cases {
		if got := o.IsPrime(id); got != want {
			t.Errorf("IsPrime(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestIsPrimeMemoizesConsistently(t *testing.T) {
	o := New()
	first := o.IsPrime("7919")
	second := o.IsPrime("7919")
	if first != second || !first {
		t.Fatalf("expected stable prime classification, got %v then %v", first, second)
	}
}

func TestNilOracleIsNeverPrime(t *testing.T) {
	var o *Oracle
	if o.IsPrime("7") {
		t.Fatal("nil oracle must report false")
	}
}
