// Package id defines the identity types for all Paygate entities.
//
// Payment links, subscription plans and subscriptions are identified by
// dense, monotonically increasing uint32 counters — one independent
// namespace per entity kind. Counters start at zero and are incremented
// before assignment, so the first issued id in every namespace is 1 and the
// zero value always means "unassigned". Ids are never reused, even after the
// entity is deactivated.
//
// Audit and event envelopes additionally carry a TypeID-based EventID
// ("evt_..."), which is globally unique and K-sortable.
package id

import (
	"fmt"
	"strconv"

	"go.jetify.com/typeid/v2"
)

// LinkID identifies a payment link.
type LinkID uint32

// PlanID identifies a subscription plan.
type PlanID uint32

// SubscriptionID identifies a subscription.
type SubscriptionID uint32

// IsZero reports whether the id is unassigned.
func (i LinkID) IsZero() bool { return i == 0 }

// IsZero reports whether the id is unassigned.
func (i PlanID) IsZero() bool { return i == 0 }

// IsZero reports whether the id is unassigned.
func (i SubscriptionID) IsZero() bool { return i == 0 }

// String returns the decimal representation.
func (i LinkID) String() string { return strconv.FormatUint(uint64(i), 10) }

// String returns the decimal representation.
func (i PlanID) String() string { return strconv.FormatUint(uint64(i), 10) }

// String returns the decimal representation.
func (i SubscriptionID) String() string { return strconv.FormatUint(uint64(i), 10) }

// parseU32 parses a decimal uint32, rejecting zero.
func parseU32(s, kind string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("id: parse %s id %q: %w", kind, s, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("id: parse %s id %q: zero is not a valid id", kind, s)
	}
	return uint32(v), nil
}

// ParseLinkID parses a decimal payment link id.
func ParseLinkID(s string) (LinkID, error) {
	v, err := parseU32(s, "link")
	return LinkID(v), err
}

// ParsePlanID parses a decimal subscription plan id.
func ParsePlanID(s string) (PlanID, error) {
	v, err := parseU32(s, "plan")
	return PlanID(v), err
}

// ParseSubscriptionID parses a decimal subscription id.
func ParseSubscriptionID(s string) (SubscriptionID, error) {
	v, err := parseU32(s, "subscription")
	return SubscriptionID(v), err
}

// ──────────────────────────────────────────────────
// Event envelope ids
// ──────────────────────────────────────────────────

// PrefixEvent is the TypeID prefix for event envelope ids.
const PrefixEvent = "evt"

// EventID is a globally unique, K-sortable identifier stamped on audit and
// event envelopes. Unlike the counter ids above it carries no ordering
// contract with respect to entity creation.
type EventID struct {
	inner typeid.TypeID
	valid bool
}

// NewEventID generates a new unique event id.
func NewEventID() EventID {
	tid, err := typeid.Generate(PrefixEvent)
	if err != nil {
		panic(fmt.Sprintf("id: generate event id: %v", err))
	}
	return EventID{inner: tid, valid: true}
}

// ParseEventID parses an event id string (e.g. "evt_01h2xcejqtf2nbrexx3vqjhp41").
func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return EventID{}, fmt.Errorf("id: parse event id: empty string")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("id: parse event id %q: %w", s, err)
	}
	if tid.Prefix() != PrefixEvent {
		return EventID{}, fmt.Errorf("id: parse event id %q: expected prefix %q, got %q", s, PrefixEvent, tid.Prefix())
	}
	return EventID{inner: tid, valid: true}, nil
}

// String returns the full TypeID string representation.
// Returns an empty string for the zero EventID.
func (i EventID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// IsNil reports whether this EventID is the zero value.
func (i EventID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i EventID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *EventID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = EventID{}
		return nil
	}
	parsed, err := ParseEventID(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
