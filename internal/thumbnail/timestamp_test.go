package thumbnail

import (
	"testing"

	"github.com/streamforge/reencoder/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestSelectTimestampOmittedForStillImage(t *testing.T) {
	v := &model.VideoStream{C: model.Common{Disposition: model.DispositionStillImage}}
	plan, err := selectTimestamp(v, f64(5), nil, f64(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Omit {
		t.Fatal("expected seek omitted for a still-image source")
	}
}

func TestSelectTimestampMinimumOfBothWhenBothGiven(t *testing.T) {
	v := &model.VideoStream{}
	// absolute=5, fraction*duration = 0.5*100=50 -> min is 5.
	plan, err := selectTimestamp(v, f64(5), f64(0.5), f64(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Seconds != 5 {
		t.Fatalf("expected 5, got %v", plan.Seconds)
	}
}

func TestSelectTimestampUsesFractionWhenOnlyFractionGiven(t *testing.T) {
	v := &model.VideoStream{}
	plan, err := selectTimestamp(v, nil, f64(0.25), f64(40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Seconds != 10 {
		t.Fatalf("expected 10, got %v", plan.Seconds)
	}
}

func TestSelectTimestampErrorsWhenNeitherGiven(t *testing.T) {
	v := &model.VideoStream{}
	_, err := selectTimestamp(v, nil, nil, f64(40))
	if err == nil {
		t.Fatal("expected error when neither absolute_seconds nor fraction given")
	}
}
