package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/rank"
)

func TestPrintTableIncludesHeaderAndRows(t *testing.T) {
	color.NoColor = true
	ip, _ := ipaddr.Parse("1.1.1.1")
	rows := []rank.Row{{IP: ip, HasLatency: true, Attempts: 4, Successes: 4, MeanRTT: 15.5}}

	var buf bytes.Buffer
	PrintTable(&buf, rows)

	out := buf.String()
	if !strings.Contains(out, "AvgLatency(ms)") {
		t.Fatalf("missing header in output: %q", out)
	}
	if !strings.Contains(out, "1.1.1.1") {
		t.Fatalf("missing IP in output: %q", out)
	}
}

func TestPadRightHandlesMultibyte(t *testing.T) {
	got := padRight("é", 4)
	if got != "é   " {
		t.Fatalf("padRight = %q", got)
	}
}
