package camera

import (
	"context"
	"testing"
	"time"
)

func TestSimSourceDeliversFrames(t *testing.T) {
	src := NewSimSource("test", 80, 16, WithSimInterval(time.Millisecond))

	frames := make(chan Frame, 8)
	stopped, err := src.BeginCapture(context.Background(), frames)
	if err != nil {
		t.Fatalf("BeginCapture failed: %v", err)
	}

	var frame Frame
	select {
	case frame = <-frames:
	case <-time.After(time.Second):
		t.Fatal("no frame within a second")
	}

	if frame.Block == nil || frame.Block.Width != 80 || frame.Block.Height != 16 {
		t.Fatalf("unexpected frame block: %+v", frame.Block)
	}
	if frame.Source != "sim" || frame.SourceID != "test" {
		t.Errorf("frame source = %s/%s, want sim/test", frame.Source, frame.SourceID)
	}
	if frame.Timestamp.IsZero() {
		t.Error("frame timestamp is zero")
	}

	src.Stop()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("capture did not stop")
	}
	if src.isCapturing.Load() {
		t.Error("source still marked capturing after Stop")
	}
}

func TestSimSourceRejectsDoubleStart(t *testing.T) {
	src := NewSimSource("test", 16, 4, WithSimInterval(time.Millisecond))

	frames := make(chan Frame, 1)
	if _, err := src.BeginCapture(context.Background(), frames); err != nil {
		t.Fatalf("BeginCapture failed: %v", err)
	}
	defer src.Stop()

	if _, err := src.BeginCapture(context.Background(), frames); err == nil {
		t.Fatal("expected error on second BeginCapture")
	}
}

func TestSimSourceStopsOnContextCancel(t *testing.T) {
	src := NewSimSource("test", 16, 4, WithSimInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan Frame) // unbuffered, blocks the producer
	stopped, err := src.BeginCapture(ctx, frames)
	if err != nil {
		t.Fatalf("BeginCapture failed: %v", err)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("capture did not stop on context cancel")
	}
}

func TestSimFrameHasBandSignal(t *testing.T) {
	src := NewSimSource("test", 100, 20)
	block := src.renderBlock()

	// Middle row carries signal, the top row is dark.
	r, g, b := block.RGB(50, 10)
	if int(r)+int(g)+int(b) < 30 {
		t.Errorf("middle row too dark: (%d, %d, %d)", r, g, b)
	}

	// Band falls off toward the edges.
	er, eg, eb := block.RGB(50, 0)
	if int(er)+int(eg)+int(eb) >= int(r)+int(g)+int(b) {
		t.Errorf("edge row (%d,%d,%d) not darker than middle (%d,%d,%d)", er, eg, eb, r, g, b)
	}
}
