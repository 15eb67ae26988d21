package seqidx

import "testing"

func TestDNA3BitRoundTrip(t *testing.T) {
	for _, c := range []byte{'A', 'T', 'C', 'G'} {
		if got := revdna3bit(dna3bit(c)); got != c {
			t.Errorf("revdna3bit(dna3bit(%c)) = %c", c, got)
		}
	}
}

func TestDNA3BitCoercesToN(t *testing.T) {
	for _, c := range []byte{'N', 'a', 'x', 0, '-'} {
		if got := dna3bit(c); got != 4 {
			t.Errorf("dna3bit(%q) = %d, want 4", c, got)
		}
	}
	if revdna3bit(4) != 'N' {
		t.Error("code 4 must decode as N")
	}
}
