package runlog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWriterRows(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Host{Model: "test cpu", Cores: 4, Threads: 8, GoMaxProcs: 8})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	r := Result{Strategy: "partition", Lifetime: "persistent", Rule: "life", Rows: 64, Cols: 64, Workers: 4, Generations: 500, Elapsed: 2 * time.Second, CPUPercent: 73.5}
	if err := w.Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0][0] != "strategy" || len(records[0]) != len(records[1]) {
		t.Fatalf("bad header %v", records[0])
	}
	row := strings.Join(records[1], ",")
	want := "partition,persistent,life,64,64,4,500,0,2000,250.00,73.5,test cpu,4,8,8"
	if row != want {
		t.Fatalf("row = %q\nwant  %q", row, want)
	}
}

func TestChartRendersPNG(t *testing.T) {
	var results []Result
	for _, workers := range []int{1, 2, 4} {
		results = append(results,
			Result{Strategy: "partition", Lifetime: "persistent", Workers: workers, Generations: uint64(100 * workers), Elapsed: time.Second},
			Result{Strategy: "celllock", Workers: workers, Generations: uint64(10 * workers), Elapsed: time.Second},
		)
	}
	var buf bytes.Buffer
	if err := Chart(results, &buf); err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}

	if err := Chart(results[:1], &buf); !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected ErrNotEnoughData, got %v", err)
	}
}

func TestDetectHost(t *testing.T) {
	h := DetectHost()
	if h.Threads <= 0 || h.Cores <= 0 || h.GoMaxProcs <= 0 {
		t.Fatalf("implausible host %+v", h)
	}
}
