// Package rank implements the total orders over Latency, Route, and Speed
// records described in spec.md §4.6, plus the Row that unifies whichever
// stages ran into the single CSV/table shape spec.md §6 describes.
package rank

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charSLee013/edgescan/internal/download"
	"github.com/charSLee013/edgescan/internal/httping"
	"github.com/charSLee013/edgescan/internal/ipaddr"
	"github.com/charSLee013/edgescan/internal/size"
	"github.com/charSLee013/edgescan/internal/tcping"
)

// SortLatency orders records so that all zero-success records sort last;
// among the rest, ascending mean RTT, ties broken by successes descending.
func SortLatency(recs []tcping.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if (a.Successes == 0) != (b.Successes == 0) {
			return a.Successes != 0 // non-zero-success sorts first
		}
		if a.Successes == 0 && b.Successes == 0 {
			return false
		}
		if a.MeanRTT != b.MeanRTT {
			return a.MeanRTT < b.MeanRTT
		}
		return a.Successes > b.Successes
	})
}

func routeRank(s httping.Status) int {
	switch s {
	case httping.NORMAL:
		return 0
	case httping.DIFFLOCATION:
		return 1
	default:
		return 2
	}
}

// SortRoute orders NORMAL < DIFF_LOCATION < NO_LOCATION, ties broken by IP.
func SortRoute(recs []httping.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		ra, rb := routeRank(a.Status), routeRank(b.Status)
		if ra != rb {
			return ra < rb
		}
		return ipaddr.Compare(a.IP, b.IP) < 0
	})
}

// SortSpeed orders descending by bytes downloaded.
func SortSpeed(recs []download.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].BytesDownloaded > recs[j].BytesDownloaded
	})
}

// Row is the flattened, stage-agnostic record written to the CSV/table
// output (spec.md §6): the orchestrator fills in whichever columns its
// enabled stages produced and leaves the rest at their zero values.
type Row struct {
	IP ipaddr.Address

	HasLatency bool
	Attempts   int
	Successes  int
	MeanRTT    float64 // milliseconds

	HasRoute bool
	Status   httping.Status

	HasSpeed        bool
	BytesDownloaded uint64
	DownloadSeconds float64
}

func latencyHeader() []string { return []string{"IP", "Sent", "Received", "LossRate", "AvgLatency(ms)"} }
func routeHeader() []string   { return []string{"RouteStatus"} }
func speedHeader() []string   { return []string{"Throughput"} }

// Header returns the CSV header that matches the stages present in rows:
// columns only appear for stages that actually ran, per spec.md §6.
func Header(rows []Row) []string {
	var hasLatency, hasRoute, hasSpeed bool
	for _, r := range rows {
		hasLatency = hasLatency || r.HasLatency
		hasRoute = hasRoute || r.HasRoute
		hasSpeed = hasSpeed || r.HasSpeed
	}
	h := []string{"IP"}
	if hasLatency {
		h = append(h, latencyHeader()[1:]...)
	}
	if hasRoute {
		h = append(h, routeHeader()...)
	}
	if hasSpeed {
		h = append(h, speedHeader()...)
	}
	return h
}

// WriteCSV writes rows to w using Header(rows) as the column set.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := Header(rows)
	if err := cw.Write(header); err != nil {
		return err
	}

	hasLatency, hasRoute, hasSpeed := false, false, false
	for _, h := range header {
		switch h {
		case "Sent":
			hasLatency = true
		case "RouteStatus":
			hasRoute = true
		case "Throughput":
			hasSpeed = true
		}
	}

	for _, r := range rows {
		rec := []string{r.IP.String()}
		if hasLatency {
			loss := 0.0
			if r.Attempts > 0 {
				loss = 1 - float64(r.Successes)/float64(r.Attempts)
			}
			rec = append(rec,
				strconv.Itoa(r.Attempts),
				strconv.Itoa(r.Successes),
				fmt.Sprintf("%.2f", loss),
				fmt.Sprintf("%.2f", r.MeanRTT),
			)
		}
		if hasRoute {
			rec = append(rec, r.Status.String())
		}
		if hasSpeed {
			rec = append(rec, size.Throughput(r.BytesDownloaded, r.DownloadSeconds))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Error()
}
