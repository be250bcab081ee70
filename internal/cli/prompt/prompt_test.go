package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes short", "y\n", true},
		{"yes long", "yes\n", true},
		{"yes uppercase", "YES\n", true},
		{"no short", "n\n", false},
		{"no long", "no\n", false},
		{"empty defaults to no", "\n", false},
		{"garbage defaults to no", "maybe\n", false},
		{"whitespace trimmed", "  y  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			got, err := p.Confirm("Delete backup?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(buf.String(), "Delete backup? [y/N]:") {
				t.Errorf("missing prompt in output: %s", buf.String())
			}
		})
	}
}

func TestConfirm_EOFIsRefusal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(&eofReader{}, &buf)

	got, err := p.Confirm("Proceed?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("EOF should refuse")
	}
}

func TestSelect_EmptyList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	_, err := p.Select("Pick one:", nil)
	if err == nil {
		t.Fatal("expected error for empty list")
	}
	if !strings.Contains(err.Error(), "no items") {
		t.Errorf("expected ErrNoItems, got: %v", err)
	}
}

func TestSelect_SingleItem(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader(""), &buf)

	idx, err := p.Select("Pick one:", []string{"backup_20250101_000000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
	// Should not prompt for single item
	if buf.Len() > 0 {
		t.Errorf("expected no output for single item, got: %s", buf.String())
	}
}

func TestSelect_ValidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantIdx int
	}{
		{"explicit first", "1\n", 0},
		{"explicit second", "2\n", 1},
		{"default on empty", "\n", 0},
		{"whitespace trimmed", "  2  \n", 1},
	}

	items := []string{"backup_20250102_000000", "backup_20250101_000000"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			idx, err := p.Select("Multiple backups:", items)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if idx != tt.wantIdx {
				t.Errorf("expected index %d, got %d", tt.wantIdx, idx)
			}
		})
	}
}

func TestSelect_InvalidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"too low", "0\n", "out of range"},
		{"too high", "3\n", "out of range"},
		{"negative", "-1\n", "out of range"},
		{"not a number", "abc\n", "not a number"},
	}

	items := []string{"one", "two"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := NewWithIO(strings.NewReader(tt.input), &buf)

			_, err := p.Select("Pick one:", items)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestSelect_Cancelled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(&eofReader{}, &buf)

	_, err := p.Select("Pick one:", []string{"one", "two"})
	if err == nil {
		t.Fatal("expected error for EOF")
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("expected ErrSelectionCancelled, got: %v", err)
	}
}

func TestSelect_OutputFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithIO(strings.NewReader("1\n"), &buf)

	_, err := p.Select("Multiple backups:", []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Multiple backups:") {
		t.Errorf("missing header in output: %s", output)
	}
	if !strings.Contains(output, "[1] first") {
		t.Errorf("missing first option in output: %s", output)
	}
	if !strings.Contains(output, "[2] second") {
		t.Errorf("missing second option in output: %s", output)
	}
	if !strings.Contains(output, "Select [1]:") {
		t.Errorf("missing prompt in output: %s", output)
	}
}

// eofReader simulates immediate EOF (like Ctrl+D).
type eofReader struct{}

func (r *eofReader) Read(_ []byte) (int, error) {
	return 0, io.EOF
}
