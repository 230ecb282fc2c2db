package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const hourLayout = "2006-01-02-15"

// Writer is a Sink that appends entries as JSON lines to hourly zstd
// segments named <prefix>-YYYY-MM-DD-HH.jsonl.zst. The segment is chosen by
// Entry.Time (UTC), so entries land in the hour they happened in.
type Writer struct {
	dir    string
	prefix string

	mu  sync.Mutex
	seg *segment
}

// segment is the open file for one hour. Reopening an hour appends a new
// zstd frame to it.
type segment struct {
	hour string
	f    *os.File
	zw   *zstd.Encoder
	enc  *json.Encoder
}

var _ Sink = (*Writer)(nil)

func NewWriter(dir, prefix string) *Writer {
	return &Writer{dir: dir, prefix: prefix}
}

// Path is the segment file an entry stamped t is written to.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, t.UTC().Format(hourLayout)))
}

func (w *Writer) Write(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	hour := e.Time.UTC().Format(hourLayout)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seg == nil || w.seg.hour != hour {
		if err := w.closeSegment(); err != nil {
			return err
		}
		seg, err := w.openSegment(e.Time)
		if err != nil {
			return err
		}
		w.seg = seg
	}
	if err := w.seg.enc.Encode(e); err != nil {
		return fmt.Errorf("journal %s: %w", w.seg.hour, err)
	}
	// Each entry ends a zstd block so a crash loses at most the entry being
	// written.
	return w.seg.zw.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeSegment()
}

func (w *Writer) openSegment(t time.Time) (*segment, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(w.Path(t), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &segment{
		hour: t.UTC().Format(hourLayout),
		f:    f,
		zw:   zw,
		enc:  json.NewEncoder(zw),
	}, nil
}

func (w *Writer) closeSegment() error {
	if w.seg == nil {
		return nil
	}
	seg := w.seg
	w.seg = nil
	err := seg.zw.Close()
	if cerr := seg.f.Close(); err == nil {
		err = cerr
	}
	return err
}
