package config

import "testing"

func TestParseHTTPURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://speed.cloudflare.com/__down?bytes=100", "speed.cloudflare.com", false},
		{"http://example.com:8080/path", "example.com", false},
		{"https://1.1.1.1/", "", true},
		{"ftp://example.com/", "", true},
		{"not-a-url", "", true},
	}
	for _, c := range cases {
		got, err := parseHTTPURL(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseHTTPURL(%q) expected error, got nil", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHTTPURL(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseHTTPURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseTLSVersion(t *testing.T) {
	if v, err := parseTLSVersion("1.2"); err != nil || v != tlsVersion12 {
		t.Fatalf("parseTLSVersion(1.2) = %v, %v", v, err)
	}
	if v, err := parseTLSVersion("1.3"); err != nil || v != tlsVersion13 {
		t.Fatalf("parseTLSVersion(1.3) = %v, %v", v, err)
	}
	if _, err := parseTLSVersion("1.1"); err == nil {
		t.Fatalf("parseTLSVersion(1.1) expected error")
	}
}
