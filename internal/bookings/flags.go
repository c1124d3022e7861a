package bookings

import (
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// UIFlags tells the supplier UI which actions are currently available for a
// booking. Flags are advisory: the transition endpoints re-check every rule,
// so a stale flag can never bypass the state machine.
type UIFlags struct {
	CanAccept      bool `json:"canAccept"`
	CanDecline     bool `json:"canDecline"`
	CanStart       bool `json:"canStart"`
	CanComplete    bool `json:"canComplete"`
	CanCancel      bool `json:"canCancel"`
	CanMessage     bool `json:"canMessage"`
	CanViewDetails bool `json:"canViewDetails"`
}

// EvaluateFlags derives the action flags for a booking as seen by the actor.
// A non-owner gets no flags at all.
func EvaluateFlags(b models.Booking, isOwner bool) UIFlags {
	if !isOwner {
		return UIFlags{}
	}
	return UIFlags{
		CanAccept:      b.Status == enums.BookingStatusPending && b.IsPaid(),
		CanDecline:     b.Status == enums.BookingStatusPending,
		CanStart:       b.Status == enums.BookingStatusConfirmed,
		CanComplete:    b.Status == enums.BookingStatusInProgress,
		CanCancel:      b.Status == enums.BookingStatusConfirmed,
		CanMessage:     true,
		CanViewDetails: true,
	}
}
