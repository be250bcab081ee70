package backup

import (
	"testing"
	"time"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"backup_20250101_000000", true},
		{"backup_20251231_235959", true},
		{"backup_20250101_000000_2", true},
		{"backup_20250101_000000_17", true},
		{"backup_20250101_000000_", false},
		{"backup_20250101_000000_x", false},
		{"backup_garbage", false},
		{"backup_2025", false},
		{"snapshot_20250101_000000", false},
		{"", false},
	}
	for _, tt := range tests {
		ts, ok := parseName(tt.name)
		if ok != tt.ok {
			t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
		if ok && ts.IsZero() {
			t.Errorf("parseName(%q) returned zero time", tt.name)
		}
	}
}

func TestParseName_Timestamp(t *testing.T) {
	ts, ok := parseName("backup_20250602_151030")
	if !ok {
		t.Fatal("expected valid name")
	}
	want := time.Date(2025, 6, 2, 15, 10, 30, 0, time.Local)
	if !ts.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ts, want)
	}
}

func TestSnapshot_Age(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		created time.Time
		want    string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-49 * time.Hour), "2 days ago"},
	}
	for _, tt := range tests {
		s := Snapshot{Name: "backup_x", CreatedAt: tt.created}
		if got := s.Age(now); got != tt.want {
			t.Errorf("Age(%v) = %q, want %q", now.Sub(tt.created), got, tt.want)
		}
	}

	if got := (Snapshot{Name: "backup_garbage"}).Age(now); got != "unknown" {
		t.Errorf("Age without timestamp = %q, want unknown", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.n); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestSnapshot_Size(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	// slot1.sav (15 bytes) + options.cfg (12 bytes) + manifest sidecar.
	if got := snap.Size(); got < 27 {
		t.Errorf("Size = %d, want at least 27", got)
	}
}
