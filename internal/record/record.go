// Package record writes published generations to an MJPEG AVI file.
package record

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"sync"
	"sync/atomic"

	"github.com/icza/mjpeg"

	"cellsim/internal/core"
	"cellsim/internal/render"
)

// Snapshotter is the view the recorder reads frames from.
type Snapshotter = core.Source

type source struct{ Snapshotter }

// Recorder encodes a frame per generation on its own goroutine. Frames that
// arrive while the encoder is behind are dropped rather than stalling the
// workers.
type Recorder struct {
	aw         mjpeg.AviWriter
	rows, cols int
	scale      int
	quality    int

	src    atomic.Pointer[source]
	frames chan []uint32

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	written atomic.Uint64
	dropped atomic.Uint64
	err     error
}

// New creates path and starts the encoder for a rows x cols grid drawn at
// scale pixels per cell.
func New(path string, rows, cols, scale, fps int) (*Recorder, error) {
	if scale <= 0 {
		scale = 1
	}
	if fps <= 0 {
		fps = 25
	}
	aw, err := mjpeg.New(path, int32(cols*scale), int32(rows*scale), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("record: create %s: %w", path, err)
	}
	r := &Recorder{
		aw:      aw,
		rows:    rows,
		cols:    cols,
		scale:   scale,
		quality: 90,
		frames:  make(chan []uint32, 64),
	}
	r.wg.Add(1)
	go r.encode()
	return r, nil
}

// Attach sets the frame source. Generations published before Attach are
// not recorded.
func (r *Recorder) Attach(src Snapshotter) {
	r.src.Store(&source{src})
}

// GenerationDone queues a snapshot of the just-published generation.
func (r *Recorder) GenerationDone(uint64) {
	src := r.src.Load()
	if src == nil {
		return
	}
	cells := src.Snapshot(nil)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.frames <- cells:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) encode() {
	defer r.wg.Done()
	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: r.quality}
	for cells := range r.frames {
		if r.err != nil {
			continue
		}
		img := render.Image(cells, r.rows, r.cols, r.scale, false)
		buf.Reset()
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			r.err = fmt.Errorf("record: encode frame: %w", err)
			continue
		}
		if err := r.aw.AddFrame(buf.Bytes()); err != nil {
			r.err = fmt.Errorf("record: add frame: %w", err)
			continue
		}
		r.written.Add(1)
	}
}

// Written returns the number of frames written so far.
func (r *Recorder) Written() uint64 { return r.written.Load() }

// Dropped returns the number of generations skipped because the encoder was
// busy.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Close flushes queued frames and finalizes the file. Call it after the
// workers have stopped.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.frames)
	r.mu.Unlock()

	r.wg.Wait()
	if err := r.aw.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("record: close: %w", err)
	}
	return r.err
}
