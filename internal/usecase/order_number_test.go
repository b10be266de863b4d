package usecase

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	got := newOrderNumber(now, uuid.NewString())

	re := regexp.MustCompile(`^ORD-20250314-[0-9A-F]{8}$`)
	if !re.MatchString(got) {
		t.Fatalf("unexpected order number format: %s", got)
	}
}

func TestNewOrderNumber_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		n := newOrderNumber(now, uuid.NewString())
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate order number after %d generations: %s", i, n)
		}
		seen[n] = struct{}{}
	}
}

func TestTaxFor_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{4000, 320},
		{6000, 480},
		{999, 80},  // 79.92 → 80
		{1, 0},     // 0.08 → 0
		{7, 1},     // 0.56 → 1
		{3399, 272}, // 271.92 → 272
	}
	for _, c := range cases {
		if got := taxFor(c.subtotal); got != c.want {
			t.Errorf("taxFor(%d) = %d, want %d", c.subtotal, got, c.want)
		}
	}
}

func TestShippingFor_Threshold(t *testing.T) {
	if got := shippingFor(4999); got != 599 {
		t.Errorf("shippingFor(4999) = %d, want 599", got)
	}
	if got := shippingFor(5000); got != 0 {
		t.Errorf("shippingFor(5000) = %d, want 0", got)
	}
}
