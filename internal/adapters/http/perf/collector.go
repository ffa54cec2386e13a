package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 5000

// EntryKind distinguishes what a timing entry measured.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindSubmission
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // HTTP route, SQL op or submission backend
	StatusCode int    // HTTP status, 0 otherwise
	Failed     bool   // submission or query error
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent entries in a fixed ring; the oldest entry is
// overwritten once full. Aggregation only happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   int64
}

// NewCollector creates a collector holding at most size entries.
// PRE: size > 0, otherwise DefaultRingSize is used
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// TotalRecorded returns how many entries were ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot is the aggregated view served to admins.
type Snapshot struct {
	TotalRecorded     int64      `json:"totalRecorded"`
	Requests          int        `json:"requests"`
	ServerErrors      int        `json:"serverErrors"`
	RequestP50Ms      float64    `json:"requestP50Ms"`
	RequestP95Ms      float64    `json:"requestP95Ms"`
	RequestP99Ms      float64    `json:"requestP99Ms"`
	Submissions       int        `json:"submissions"`
	FailedSubmissions int        `json:"failedSubmissions"`
	SlowestPaths      []PathStat `json:"slowestPaths"`
	SlowestQueries    []PathStat `json:"slowestQueries"`
	SubmissionStats   []PathStat `json:"submissionStats"`
}

// PathStat aggregates timings for one path, SQL op or backend.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

type statSet map[string]*PathStat

func (s statSet) add(path string, ms float64) {
	st, ok := s[path]
	if !ok {
		st = &PathStat{Path: path}
		s[path] = st
	}
	st.Count++
	st.TotalMs += ms
	if ms > st.MaxMs {
		st.MaxMs = ms
	}
}

// top returns the n entries with the highest average, slowest first.
func (s statSet) top(n int) []PathStat {
	list := make([]PathStat, 0, len(s))
	for _, st := range s {
		st.AvgMs = st.TotalMs / float64(st.Count)
		list = append(list, *st)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

// Snapshot aggregates entries recorded at or after since.
// PRE: none
// POST: Returns percentiles over requests and top-N lists per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	requests, queries, submissions := statSet{}, statSet{}, statSet{}
	snap := Snapshot{TotalRecorded: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			requests.add(e.Path, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		case KindQuery:
			queries.add(e.Path, e.DurationMs)
		case KindSubmission:
			submissions.add(e.Path, e.DurationMs)
			snap.Submissions++
			if e.Failed {
				snap.FailedSubmissions++
			}
		}
	}

	snap.Requests = len(durations)
	snap.SlowestPaths = requests.top(topN)
	snap.SlowestQueries = queries.top(topN)
	snap.SubmissionStats = submissions.top(topN)
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
