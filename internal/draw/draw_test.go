package draw

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFillRectScales(t *testing.T) {
	// 10x5 terminal = 10x10 sub-pixels over a 100x100 logical field.
	c := NewScaledCanvas(10, 5, 100, 100)
	c.FillRect(0, 0, 50, 50)

	if !c.Pixel(0, 0) || !c.Pixel(4, 4) {
		t.Fatal("top-left quarter should be filled")
	}
	if c.Pixel(5, 0) || c.Pixel(0, 5) || c.Pixel(9, 9) {
		t.Fatal("pixels outside the box are set")
	}
}

func TestFillRectClipsOffscreen(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.FillRect(-50, -50, 60, 60)
	if !c.Pixel(0, 0) {
		t.Fatal("visible part of a partly offscreen box should be drawn")
	}
	c.Clear()
	c.FillRect(-500, -500, 10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if c.Pixel(x, y) {
				t.Fatalf("offscreen box drew pixel %d,%d", x, y)
			}
		}
	}
}

func TestFillMask(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	// Left column filled only.
	c.FillMask(0, 0, 4, 4, 2, 1, func(col, row int) bool { return col == 0 })
	if !c.Pixel(0, 0) || !c.Pixel(1, 3) {
		t.Fatal("left half should be filled")
	}
	if c.Pixel(2, 0) || c.Pixel(3, 3) {
		t.Fatal("right half should be empty")
	}
}

func TestDashedVLine(t *testing.T) {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.DashedVLine(5, 2, 2, 0)
	want := []bool{true, true, false, false, true, true, false, false, true, true}
	for y, w := range want {
		if got := c.Pixel(5, y); got != w {
			t.Fatalf("pixel y=%d = %v, want %v", y, got, w)
		}
	}
}

func TestRenderUsesHalfBlocks(t *testing.T) {
	c := NewScaledCanvas(3, 1, 3, 2)
	c.FillRect(0, 0, 1, 2) // both halves of column 0
	c.FillRect(1, 0, 1, 1) // top half of column 1

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()
	if !strings.Contains(out, "\033[1;1H"+string(BlockFull)) {
		t.Fatalf("missing full block in %q", out)
	}
	if !strings.Contains(out, "\033[1;2H"+string(BlockUpperHalf)) {
		t.Fatalf("missing upper half block in %q", out)
	}
	if strings.Contains(out, "\033[1;3H") {
		t.Fatalf("empty cell should be skipped: %q", out)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		full     int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2, 10},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.fraction, 10)
		if n := utf8.RuneCountInString(bar); n != 10 {
			t.Fatalf("ProgressBar(%v) has %d cells", tt.fraction, n)
		}
		if n := strings.Count(bar, string(BlockFull)); n != tt.full {
			t.Errorf("ProgressBar(%v) has %d full cells, want %d", tt.fraction, n, tt.full)
		}
	}
}

func TestFit(t *testing.T) {
	w, h, col, row := Fit(80, 24, 2)
	if w != 80 || h != 22 || col != 0 || row != 2 {
		t.Fatalf("Fit(80,24) = %d,%d,%d,%d", w, h, col, row)
	}
	w, h, col, row = Fit(200, 60, 2)
	if w != MaxRenderCols || h != MaxRenderRows || col != 20 || row != 2+5 {
		t.Fatalf("Fit(200,60) = %d,%d,%d,%d", w, h, col, row)
	}
}

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)
	cw.WriteAt(1, 1, "hi")
	if out.Len() != 0 {
		t.Fatal("ChunkWriter wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := out.String(); got != "\033[4;3Hhi" {
		t.Fatalf("Flush wrote %q", got)
	}
}
