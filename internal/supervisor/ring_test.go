package supervisor

import (
	"reflect"
	"testing"
)

func TestLineRingWrapsInOrder(t *testing.T) {
	r := NewLineRing(3)
	r.Add("a")
	r.Add("b")
	r.Add("c")
	r.Add("d")

	got := r.All()
	want := []string{"b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLineRingPartiallyFilled(t *testing.T) {
	r := NewLineRing(5)
	r.Add("x")
	r.Add("y")

	got := r.All()
	want := []string{"x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLineRingTailJoinsWithNewlines(t *testing.T) {
	r := NewLineRing(2)
	r.Add("one")
	r.Add("two")
	if got := r.Tail(); got != "one\ntwo" {
		t.Fatalf("got %q", got)
	}
}
