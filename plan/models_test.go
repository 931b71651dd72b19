package plan

import (
	"testing"
	"time"

	"github.com/xraph/paygate/types"
)

func TestPlanDeactivate(t *testing.T) {
	p := &Plan{
		ID:       1,
		Merchant: types.MustParseAddress("GMERCHANT"),
		Amount:   types.NewAmount(500),
		Interval: 3600,
		Status:   StatusActive,
	}

	if !p.IsActive() {
		t.Fatal("new plan should be active")
	}
	if !p.Deactivate() {
		t.Fatal("first deactivate should succeed")
	}
	if p.Deactivate() {
		t.Error("second deactivate should report no transition")
	}
	if p.IsActive() {
		t.Error("plan should be inactive after deactivate")
	}
}

func TestPlanIntervalDuration(t *testing.T) {
	p := &Plan{Interval: 86400}
	if got := p.IntervalDuration(); got != 24*time.Hour {
		t.Errorf("got %s, want 24h", got)
	}
}
