package id

import (
	"testing"
	"time"
)

func TestOrderingMonotonic(t *testing.T) {
	g := NewGenerator()
	NowMs = func() int64 { return 1000 }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a<b")
	}
}

func TestClockRegressionGuard(t *testing.T) {
	g := NewGenerator()
	seq := int64(1000)
	NowMs = func() int64 { return seq }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next() // uses 1000
	seq = 900     // clock went backwards
	b := g.Next() // should still be > a
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	a := g.Next()
	parsed, err := Parse(a.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != a {
		t.Fatalf("round trip mismatch: %v != %v", parsed, a)
	}
	if _, err := Parse("zz"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}

func TestTimeExtraction(t *testing.T) {
	g := NewGenerator()
	NowMs = func() int64 { return 1234567890 }
	defer func() { NowMs = func() int64 { return time.Now().UnixMilli() } }()

	a := g.Next()
	if got := a.Time().UnixMilli(); got != 1234567890 {
		t.Fatalf("want embedded ms 1234567890, got %d", got)
	}
}
