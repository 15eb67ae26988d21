package namecsa

import (
	"bytes"
	"testing"
)

func TestLocate(t *testing.T) {
	type args struct {
		text    string
		pattern string
	}
	tests := []struct {
		name string
		args args
		want []int
	}{
		{"single name", args{"#x$", "#x$"}, []int{0}},
		{"second of two", args{"#x$#y$", "#y$"}, []int{3}},
		{"absent", args{"#x$#y$", "#z$"}, []int{}},
		{"name that prefixes another", args{"#chr1$#chr10$", "#chr1$"}, []int{0}},
		{"repeated substring", args{"abcabc", "abc"}, []int{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := New([]byte(tt.args.text))
			got, err := x.Locate([]byte(tt.args.pattern))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Locate(%q) = %v, want %v", tt.args.pattern, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Locate(%q) = %v, want %v", tt.args.pattern, got, tt.want)
				}
			}
		})
	}
}

func TestLocateEmptyPattern(t *testing.T) {
	x := New([]byte("#x$"))
	if _, err := x.Locate(nil); err == nil {
		t.Error("empty pattern should fail")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	x := New([]byte("#alpha$#beta$#gamma$"))
	payload, err := x.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Text(), x.Text()) {
		t.Fatal("text changed across round trip")
	}
	offs, err := got.Locate([]byte("#beta$"))
	if err != nil {
		t.Fatal(err)
	}
	if len(offs) != 1 || offs[0] != 7 {
		t.Fatalf("Locate after round trip = %v", offs)
	}
}
