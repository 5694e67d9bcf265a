package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/optolab/spectra/internal/spectrum"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "session.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return store
}

func testProfile(kind spectrum.ProfileKind, ts time.Time, scale float64) *spectrum.Profile {
	values := make([]float64, 100)
	for i := range values {
		values[i] = scale * float64(i)
	}
	return spectrum.NewProfile(ts, kind, values)
}

func TestStoreSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "sim", "bench-1", map[string]int{"bins": 100})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("session ID = %d, want > 0", id)
	}

	sess, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if sess.SourceType != "sim" || sess.SourceID != "bench-1" {
		t.Errorf("session source = %s/%s, want sim/bench-1", sess.SourceType, sess.SourceID)
	}
	if sess.Config == nil || *sess.Config != `{"bins":100}` {
		t.Errorf("session config = %v", sess.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id {
		t.Errorf("Sessions = %+v, want one session with ID %d", sessions, id)
	}
}

func TestStoreProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "sim", "bench-1", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stored := []*spectrum.Profile{
		testProfile(spectrum.KindReference, base, 2),
		testProfile(spectrum.KindSample, base.Add(time.Second), 1),
		testProfile(spectrum.KindAbsorbance, base.Add(time.Second), 0.01),
		testProfile(spectrum.KindSample, base.Add(2*time.Second), 0.5),
	}
	for _, p := range stored {
		if err := store.StoreProfile(ctx, id, p); err != nil {
			t.Fatalf("StoreProfile(%s) failed: %v", p.Kind, err)
		}
	}

	reader, err := store.ReadProfiles(ctx, id)
	if err != nil {
		t.Fatalf("ReadProfiles failed: %v", err)
	}
	defer reader.Close()

	var got []*spectrum.Profile
	for reader.Next() {
		got = append(got, reader.Current())
	}
	if err := reader.Error(); err != nil {
		t.Fatalf("reader error: %v", err)
	}

	if len(got) != len(stored) {
		t.Fatalf("read %d profiles, want %d", len(got), len(stored))
	}
	for _, p := range got {
		if len(p.Points) != 100 {
			t.Errorf("%s@%s: %d points, want 100", p.Kind, p.Timestamp, len(p.Points))
		}
		for i, pt := range p.Points {
			if pt.Bin != i {
				t.Fatalf("%s@%s: point %d has bin %d", p.Kind, p.Timestamp, i, pt.Bin)
			}
		}
	}

	// Ordered by timestamp, then kind within the same timestamp.
	if got[0].Kind != spectrum.KindReference {
		t.Errorf("first profile kind = %s, want reference", got[0].Kind)
	}
	if got[1].Kind != spectrum.KindAbsorbance || got[2].Kind != spectrum.KindSample {
		t.Errorf("timestamp group order = %s, %s", got[1].Kind, got[2].Kind)
	}
}

func TestStoreProfileFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "sim", "bench-1", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		p := testProfile(spectrum.KindSample, base.Add(time.Duration(i)*time.Second), 1)
		if err := store.StoreProfile(ctx, id, p); err != nil {
			t.Fatalf("StoreProfile failed: %v", err)
		}
	}
	if err := store.StoreProfile(ctx, id, testProfile(spectrum.KindReference, base, 2)); err != nil {
		t.Fatalf("StoreProfile failed: %v", err)
	}

	count := func(opts ...ReaderOption) int {
		reader, err := store.ReadProfiles(ctx, id, opts...)
		if err != nil {
			t.Fatalf("ReadProfiles failed: %v", err)
		}
		defer reader.Close()

		n := 0
		for reader.Next() {
			n++
		}
		if err := reader.Error(); err != nil {
			t.Fatalf("reader error: %v", err)
		}
		return n
	}

	if n := count(WithKind(spectrum.KindSample)); n != 5 {
		t.Errorf("sample profiles = %d, want 5", n)
	}
	if n := count(WithKind(spectrum.KindReference)); n != 1 {
		t.Errorf("reference profiles = %d, want 1", n)
	}
	if n := count(WithTimeRange(base.Add(time.Second), base.Add(3*time.Second))); n != 3 {
		t.Errorf("profiles in range = %d, want 3", n)
	}
	if n := count(WithStartTime(base.Add(4 * time.Second))); n != 1 {
		t.Errorf("profiles after start = %d, want 1", n)
	}
}

func TestStorePeaksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "sim", "bench-1", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	profile := testProfile(spectrum.KindAbsorbance, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), 0.01)
	peaks := []spectrum.Peak{
		{Bin: 20, Wavelength: 455, Value: 0.42},
		{Bin: 50, Wavelength: 567, Value: 0.8},
	}

	if err := store.StoreProfile(ctx, id, profile); err != nil {
		t.Fatalf("StoreProfile failed: %v", err)
	}
	if err := store.StorePeaks(ctx, id, profile, peaks); err != nil {
		t.Fatalf("StorePeaks failed: %v", err)
	}

	got, err := store.Peaks(ctx, id, profile)
	if err != nil {
		t.Fatalf("Peaks failed: %v", err)
	}
	if len(got) != len(peaks) {
		t.Fatalf("read %d peaks, want %d", len(got), len(peaks))
	}
	for i, peak := range got {
		if peak != peaks[i] {
			t.Errorf("peak %d = %+v, want %+v", i, peak, peaks[i])
		}
	}
}
