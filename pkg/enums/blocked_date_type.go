package enums

import "fmt"

// BlockedDateType distinguishes manual unavailability entries from
// booking-derived ones. Only manual entries may be deleted by the supplier.
type BlockedDateType string

const (
	BlockedDateTypeBlocked     BlockedDateType = "blocked"
	BlockedDateTypeUnavailable BlockedDateType = "unavailable"
	BlockedDateTypeReserved    BlockedDateType = "reserved"
	BlockedDateTypeRequested   BlockedDateType = "requested"
)

var validBlockedDateTypes = []BlockedDateType{
	BlockedDateTypeBlocked,
	BlockedDateTypeUnavailable,
	BlockedDateTypeReserved,
	BlockedDateTypeRequested,
}

// String implements fmt.Stringer.
func (b BlockedDateType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BlockedDateType.
func (b BlockedDateType) IsValid() bool {
	for _, candidate := range validBlockedDateTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsManual reports whether the entry was created by the supplier rather than
// derived from a booking.
func (b BlockedDateType) IsManual() bool {
	return b == BlockedDateTypeBlocked || b == BlockedDateTypeUnavailable
}

// ParseBlockedDateType converts raw input into a BlockedDateType.
func ParseBlockedDateType(value string) (BlockedDateType, error) {
	for _, candidate := range validBlockedDateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid blocked date type %q", value)
}
