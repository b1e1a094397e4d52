package size

import "testing"

func TestStringHumanReadable(t *testing.T) {
	cases := []struct {
		in   Size
		want string
	}{
		{0, "0.00 B"},
		{Size(1073741824), "1.00 GB"},
		{SizeKilo, "1.00 KB"},
		{SizeMega * 10, "10.00 MB"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("Size(%d).String() = %q, want %q", uint64(c.in), got, c.want)
		}
	}
}

func TestThroughputZeroElapsed(t *testing.T) {
	if got := Throughput(1000, 0); got != "0" {
		t.Errorf("Throughput with zero elapsed = %q, want %q", got, "0")
	}
}
