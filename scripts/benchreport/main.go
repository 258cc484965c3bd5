// Command benchreport turns `go test -bench` output into a markdown table,
// optionally comparing it against a baseline run.
//
//	go test -bench=. -benchmem ./filearray > new.txt
//	go run ./scripts/benchreport -input new.txt -base old.txt -output BENCH.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Result is one parsed benchmark line.
type Result struct {
	Name        string // without the -GOMAXPROCS suffix
	Operation   string
	Variant     string // sub-benchmark, e.g. record size
	Iterations  int
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// Row pairs a current result with its baseline, if any.
type Row struct {
	Cur     Result
	Base    *Result
	Speedup float64 // base ns/op divided by current ns/op
}

var (
	inputFile  = flag.String("input", "", "Benchmark output to report on (stdin if not specified)")
	baseFile   = flag.String("base", "", "Baseline benchmark output to compare against")
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cur, err := parseFile(*inputFile, os.Stdin)
	if err != nil {
		return err
	}
	var base []Result
	if *baseFile != "" {
		if base, err = parseFile(*baseFile, nil); err != nil {
			return err
		}
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d results (%d baseline)\n", len(cur), len(base))
	}

	report := markdown(compare(cur, base), len(base) > 0, time.Now())
	if *outputFile == "" {
		_, err = fmt.Fprint(os.Stdout, report)
		return err
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		return err
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
	return nil
}

func parseFile(path string, fallback io.Reader) ([]Result, error) {
	if path == "" {
		return parse(fallback), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f), nil
}

// parse reads plain or `go test -json` benchmark output. Lines that are not
// benchmark results are skipped.
//
//	BenchmarkAppend/64B-8   1000000   1234 ns/op   51.87 MB/s   64 B/op   1 allocs/op
func parse(r io.Reader) []Result {
	var results []Result
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		var ev struct{ Output string }
		if json.Unmarshal([]byte(line), &ev) == nil && ev.Output != "" {
			line = ev.Output
		}
		if res, ok := parseLine(strings.TrimSpace(line)); ok {
			results = append(results, res)
		}
	}
	return results
}

func parseLine(line string) (Result, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || !strings.HasPrefix(fields[0], "Benchmark") {
		return Result{}, false
	}
	iters, err := strconv.Atoi(fields[1])
	if err != nil {
		return Result{}, false
	}

	name := fields[0]
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	res := Result{Name: name, Iterations: iters}
	res.Operation, res.Variant, _ = strings.Cut(strings.TrimPrefix(name, "Benchmark"), "/")

	seen := false
	for i := 2; i+1 < len(fields); i += 2 {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			continue
		}
		switch fields[i+1] {
		case "ns/op":
			res.NsPerOp, seen = v, true
		case "MB/s":
			res.MBPerSec = v
		case "B/op":
			res.BytesPerOp = int64(v)
		case "allocs/op":
			res.AllocsPerOp = int64(v)
		}
	}
	return res, seen
}

// compare matches results by name. With -count > 1 the last run of each
// name wins.
func compare(cur, base []Result) []Row {
	latest := func(rs []Result) map[string]Result {
		m := make(map[string]Result, len(rs))
		for _, r := range rs {
			m[r.Name] = r
		}
		return m
	}
	curBy, baseBy := latest(cur), latest(base)

	rows := make([]Row, 0, len(curBy))
	for name, c := range curBy {
		row := Row{Cur: c}
		if b, ok := baseBy[name]; ok && c.NsPerOp > 0 {
			row.Base = &b
			row.Speedup = b.NsPerOp / c.NsPerOp
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b Row) int { return strings.Compare(a.Cur.Name, b.Cur.Name) })
	return rows
}

func markdown(rows []Row, withBase bool, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	if withBase {
		faster, slower, matched := 0, 0, 0
		for _, r := range rows {
			if r.Base == nil {
				continue
			}
			matched++
			switch {
			case r.Speedup > 1.05:
				faster++
			case r.Speedup < 0.95:
				slower++
			}
		}
		sb.WriteString("## Summary\n\n")
		fmt.Fprintf(&sb, "- **Benchmarks**: %d (%d with a baseline)\n", len(rows), matched)
		fmt.Fprintf(&sb, "- Faster by more than 5%%: %d\n", faster)
		fmt.Fprintf(&sb, "- Slower by more than 5%%: %d\n\n", slower)
	}

	sb.WriteString("## Results\n\n")
	if withBase {
		sb.WriteString("| Operation | Variant | ns/op | baseline | Speedup | MB/s | B/op | Allocs |\n")
		sb.WriteString("|-----------|---------|-------|----------|---------|------|------|--------|\n")
	} else {
		sb.WriteString("| Operation | Variant | ns/op | MB/s | B/op | Allocs |\n")
		sb.WriteString("|-----------|---------|-------|------|------|--------|\n")
	}
	for _, r := range rows {
		c := r.Cur
		variant := c.Variant
		if variant == "" {
			variant = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s ", c.Operation, variant, formatNumber(c.NsPerOp))
		if withBase {
			if r.Base == nil {
				sb.WriteString("| *new* | - ")
			} else {
				mark := "✓"
				if r.Speedup < 1 {
					mark = "✗"
				}
				fmt.Fprintf(&sb, "| %s | %.2fx %s ", formatNumber(r.Base.NsPerOp), r.Speedup, mark)
			}
		}
		mbs := "-"
		if c.MBPerSec > 0 {
			mbs = fmt.Sprintf("%.1f", c.MBPerSec)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", mbs, formatBytes(c.BytesPerOp), formatNumber(float64(c.AllocsPerOp)))
	}
	return sb.String()
}

func formatNumber(n float64) string {
	switch {
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.1fK", n/1e3)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.2fMB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(b)/(1<<10))
	}
	return fmt.Sprintf("%dB", b)
}
