package rank

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charSLee013/edgescan/internal/httping"
	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/tcping"
)

func ip(s string) ipaddr.Address {
	a, _ := ipaddr.Parse(s)
	return a
}

func TestSortLatencyZeroSuccessLast(t *testing.T) {
	recs := []tcping.Record{
		{IP: ip("1.1.1.1"), Attempts: 4, Successes: 0, MeanRTT: 0},
		{IP: ip("1.1.1.2"), Attempts: 4, Successes: 4, MeanRTT: 20},
		{IP: ip("1.1.1.3"), Attempts: 4, Successes: 2, MeanRTT: 10},
	}
	SortLatency(recs)
	if recs[0].IP.String() != "1.1.1.3" || recs[1].IP.String() != "1.1.1.2" || recs[2].IP.String() != "1.1.1.1" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}

func TestSortLatencyTieBrokenBySuccesses(t *testing.T) {
	recs := []tcping.Record{
		{IP: ip("1.1.1.1"), Attempts: 4, Successes: 2, MeanRTT: 15},
		{IP: ip("1.1.1.2"), Attempts: 4, Successes: 4, MeanRTT: 15},
	}
	SortLatency(recs)
	if recs[0].IP.String() != "1.1.1.2" {
		t.Fatalf("expected higher successes first, got %+v", recs)
	}
}

func TestSortRouteOrdersStatusThenIP(t *testing.T) {
	recs := []httping.Record{
		{IP: ip("2.2.2.2"), Status: httping.NOLOCATION},
		{IP: ip("1.1.1.1"), Status: httping.NORMAL},
		{IP: ip("1.1.1.2"), Status: httping.DIFFLOCATION},
		{IP: ip("1.1.1.0"), Status: httping.NORMAL},
	}
	SortRoute(recs)
	want := []string{"1.1.1.0", "1.1.1.1", "1.1.1.2", "2.2.2.2"}
	for i, w := range want {
		if recs[i].IP.String() != w {
			t.Fatalf("position %d: got %s want %s", i, recs[i].IP.String(), w)
		}
	}
}

func TestHeaderVariesByStagesPresent(t *testing.T) {
	rows := []Row{{IP: ip("1.1.1.1"), HasLatency: true}}
	h := Header(rows)
	if h[0] != "IP" || len(h) != len(latencyHeader()) {
		t.Fatalf("unexpected header for latency-only rows: %v", h)
	}

	rows = []Row{{IP: ip("1.1.1.1"), HasLatency: true, HasSpeed: true}}
	h = Header(rows)
	if h[len(h)-1] != "Throughput" {
		t.Fatalf("expected trailing Throughput column, got %v", h)
	}
}

func TestWriteCSVRoundTripsHeaderAndRowCount(t *testing.T) {
	rows := []Row{
		{IP: ip("1.1.1.1"), HasLatency: true, Attempts: 4, Successes: 4, MeanRTT: 12.5},
		{IP: ip("1.1.1.2"), HasLatency: true, Attempts: 4, Successes: 2, MeanRTT: 20},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(rows)+1)
	}
	if !strings.HasPrefix(lines[0], "IP,Sent,Received,LossRate,AvgLatency") {
		t.Fatalf("unexpected header line: %s", lines[0])
	}
}
