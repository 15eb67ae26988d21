package succinct

import "testing"

func TestIntVecGetSet(t *testing.T) {
	type args struct {
		width uint8
		vals  []uint64
	}
	tests := []struct {
		name string
		args args
	}{
		{"width 1", args{1, []uint64{1, 0, 1, 1, 0}}},
		{"width 3 dna codes", args{3, []uint64{0, 1, 2, 3, 4, 4, 0}}},
		{"cross word boundaries", args{17, []uint64{1 << 16, 42, 0, 99999}}},
		{"width 64", args{64, []uint64{^uint64(0), 0, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewIntVec(uint64(len(tt.args.vals)), tt.args.width)
			if err != nil {
				t.Fatal(err)
			}
			for i, x := range tt.args.vals {
				v.Set(uint64(i), x)
			}
			for i, want := range tt.args.vals {
				if got := v.Get(uint64(i)); got != want {
					t.Errorf("Get(%d) = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestIntVecBitCompress(t *testing.T) {
	v, err := NewIntVec(4, 32)
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range []uint64{1, 5, 7, 2} {
		v.Set(uint64(i), x)
	}
	c := v.BitCompress()
	if c.Width() != 3 {
		t.Fatalf("compressed width = %d, want 3", c.Width())
	}
	for i := uint64(0); i < 4; i++ {
		if c.Get(i) != v.Get(i) {
			t.Fatalf("element %d changed by compression", i)
		}
	}
}

func TestIntVecCodecRoundTrip(t *testing.T) {
	v, err := NewIntVec(100, 13)
	if err != nil {
		t.Fatal(err)
	}
	for i := uint64(0); i < 100; i++ {
		v.Set(i, (i*37)%(1<<13))
	}
	payload, err := v.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeIntVec(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 100 || got.Width() != 13 {
		t.Fatalf("shape changed: len %d width %d", got.Len(), got.Width())
	}
	for i := uint64(0); i < 100; i++ {
		if got.Get(i) != v.Get(i) {
			t.Fatalf("element %d changed across round trip", i)
		}
	}
}

func TestWidthFor(t *testing.T) {
	tests := []struct {
		max  uint64
		want uint8
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9}, {^uint64(0), 64},
	}
	for _, tt := range tests {
		if got := WidthFor(tt.max); got != tt.want {
			t.Errorf("WidthFor(%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}
