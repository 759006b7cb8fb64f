package score

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
)

type memStore struct {
	records []Record
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load() ([]Record, error) { return slices.Clone(m.records), m.loadErr }

func (m *memStore) Save(records []Record) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = slices.Clone(records)
	return nil
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestAddKeepsTopN(t *testing.T) {
	l := NewLedger(5, nil, quiet())
	for i, s := range []int{50, 10, 30, 70, 20, 40, 60} {
		l.Add(string(rune('A'+i)), s)
	}

	got := l.Records()
	want := []int{70, 60, 50, 40, 30}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Score != want[i] {
			t.Fatalf("records = %v, want scores %v", got, want)
		}
	}
}

func TestAddRank(t *testing.T) {
	l := NewLedger(3, nil, quiet())
	if rank := l.Add("AAA", 10); rank != 0 {
		t.Fatalf("first rank = %d", rank)
	}
	if rank := l.Add("BBB", 5); rank != 1 {
		t.Fatalf("lower rank = %d", rank)
	}
	if rank := l.Add("CCC", 99); rank != 0 {
		t.Fatalf("new best rank = %d", rank)
	}
	if rank := l.Add("DDD", 1); rank != -1 {
		t.Fatalf("rank past the cut = %d, want -1", rank)
	}
}

func TestQualifies(t *testing.T) {
	l := NewLedger(2, nil, quiet())
	if !l.Qualifies(0) {
		t.Fatal("an empty table takes any score")
	}
	l.Add("AAA", 100)
	l.Add("BBB", 50)

	tests := []struct {
		score int
		want  bool
	}{
		{49, false},
		{50, false},
		{51, true},
		{500, true},
	}
	for _, tt := range tests {
		if got := l.Qualifies(tt.score); got != tt.want {
			t.Errorf("Qualifies(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
	if low, full := l.Lowest(); !full || low != 50 {
		t.Fatalf("Lowest() = %d, %v", low, full)
	}
}

func TestTiesKeepOlderFirst(t *testing.T) {
	l := NewLedger(3, nil, quiet())
	l.Add("OLD", 40)
	if rank := l.Add("NEW", 40); rank != 1 {
		t.Fatalf("tied rank = %d, want 1", rank)
	}
	l.Add("TOP", 90)
	if rank := l.Add("LAT", 40); rank != -1 {
		t.Fatalf("a tie with the lowest of a full table must not enter, rank %d", rank)
	}
	got := l.Records()
	if got[1].Initials != "OLD" || got[2].Initials != "NEW" {
		t.Fatalf("records = %v", got)
	}
}

func TestAddPersists(t *testing.T) {
	m := &memStore{}
	l := NewLedger(5, m, quiet())
	l.Add("ABC", 120)
	if m.saves != 1 || len(m.records) != 1 || m.records[0] != (Record{"ABC", 120}) {
		t.Fatalf("store = %+v", m)
	}

	m.saveErr = errors.New("disk full")
	if rank := l.Add("XYZ", 10); rank != 1 {
		t.Fatalf("rank = %d despite save failure", rank)
	}
	if len(l.Records()) != 2 {
		t.Fatal("in-memory table not updated after a failed save")
	}
}

func TestLoadSortsAndCaps(t *testing.T) {
	m := &memStore{records: []Record{{"A", 1}, {"B", 9}, {"C", 5}, {"D", 7}}}
	l := NewLedger(3, m, quiet())
	got := l.Load()
	if len(got) != 3 || got[0].Score != 9 || got[2].Score != 5 {
		t.Fatalf("Load() = %v", got)
	}
}

func TestLoadErrorYieldsEmptyTable(t *testing.T) {
	l := NewLedger(5, &memStore{records: []Record{{"A", 1}}, loadErr: errors.New("bad")}, quiet())
	if got := l.Load(); len(got) != 0 {
		t.Fatalf("Load() = %v, want empty", got)
	}
	if !l.Qualifies(0) {
		t.Fatal("empty table must accept any score")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Record
	}{
		{"records", `[{"initials":"ABC","score":120},{"initials":"","score":3}]`, []Record{{"ABC", 120}, {"???", 3}}},
		{"pairs", `[["ABC", 120], ["XY", 7.0]]`, []Record{{"ABC", 120}, {"XY", 7}}},
		{"bare scores", `[300, 20]`, []Record{{"???", 300}, {"???", 20}}},
		{"mixed and junk", `[["A", 1], 2, "x", {"initials":"C","score":3}, [1,2,3]]`, []Record{{"A", 1}, {"???", 2}, {"C", 3}}},
		{"empty", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Decode = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Decode([]byte(`{"not": "a list"}`)); err == nil {
		t.Fatal("Decode should reject a non-list document")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	fs := NewFileStore(path)

	got, err := fs.Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("missing file: %v, %v", got, err)
	}

	l := NewLedger(5, fs, quiet())
	l.Add("AAA", 30)
	l.Add("BBB", 60)

	reloaded := NewLedger(5, NewFileStore(path), quiet())
	records := reloaded.Load()
	if len(records) != 2 || records[0] != (Record{"BBB", 60}) {
		t.Fatalf("reloaded = %v", records)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("corrupt file should report an error")
	}
	l := NewLedger(5, NewFileStore(path), quiet())
	if got := l.Load(); len(got) != 0 {
		t.Fatalf("Load() = %v, want empty table", got)
	}
}

func TestNormalizeInitials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "ABC"},
		{"a-b c d", "ABC"},
		{"x9", "X9"},
		{"", UnknownInitials},
		{"!!", UnknownInitials},
		{"ñab", "AB"},
	}
	for _, tt := range tests {
		if got := NormalizeInitials(tt.in, 3); got != tt.want {
			t.Errorf("NormalizeInitials(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
