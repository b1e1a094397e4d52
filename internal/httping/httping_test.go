package httping

import "testing"

func TestClassifyScenarios(t *testing.T) {
	cases := []struct {
		name   string
		codes  []string
		status Status
	}{
		{"S6 all agree", []string{"SJC", "SJC"}, NORMAL},
		{"S6 mismatch", []string{"SJC", "LAX"}, DIFFLOCATION},
		{"S6 no codes", []string{"", ""}, NOLOCATION},
		{"single code then empty", []string{"SJC", ""}, NORMAL},
		{"empty then code", []string{"", "SJC"}, NORMAL},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, _ := Classify(c.codes)
			if got != c.status {
				t.Errorf("Classify(%v) = %v, want %v", c.codes, got, c.status)
			}
		})
	}
}

func TestExtractLocationCode(t *testing.T) {
	resp := "HTTP/1.1 200 OK\r\nCF-RAY: 7f3a9c1b2d3e4f5a-SJC\r\nContent-Length: 0\r\n\r\n"
	if got := extractLocationCode(resp, "CF-RAY"); got != "SJC" {
		t.Errorf("extractLocationCode = %q, want %q", got, "SJC")
	}
}

func TestExtractLocationCodeCaseInsensitive(t *testing.T) {
	resp := "HTTP/1.1 200 OK\r\ncf-ray: abc123-lax\r\n\r\n"
	if got := extractLocationCode(resp, "CF-RAY"); got != "lax" {
		t.Errorf("extractLocationCode = %q, want %q", got, "lax")
	}
}

func TestExtractLocationCodeMissing(t *testing.T) {
	resp := "HTTP/1.1 404 Not Found\r\n\r\n"
	if got := extractLocationCode(resp, "CF-RAY"); got != "" {
		t.Errorf("extractLocationCode = %q, want empty", got)
	}
}
