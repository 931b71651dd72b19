package link

import (
	"testing"

	"github.com/xraph/paygate/types"
)

func TestPaymentLinkDeactivate(t *testing.T) {
	l := &PaymentLink{
		ID:       1,
		Merchant: types.MustParseAddress("GMERCHANT"),
		Amount:   types.NewAmount(100),
		Status:   StatusActive,
	}

	if !l.IsActive() {
		t.Fatal("new link should be active")
	}
	if !l.Deactivate() {
		t.Fatal("first deactivate should succeed")
	}
	if l.IsActive() {
		t.Error("link should be inactive after deactivate")
	}

	// The latch is one-way: a second deactivate reports no transition.
	if l.Deactivate() {
		t.Error("second deactivate should report no transition")
	}
	if l.Status != StatusInactive {
		t.Errorf("status changed: got %s", l.Status)
	}
}
