package domain

import "time"

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCanceled  BookingStatus = "canceled"
	StatusNoShow    BookingStatus = "no_show"
	StatusFailed    BookingStatus = "failed"
)

// ActiveStatuses is the closed set of statuses that occupy a resource/time slot
// and participate in the overlap exclusion check.
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
}

// TerminalStatuses is the closed set of statuses that never block future
// bookings on the same resource/time and are not re-enterable.
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCanceled,
	StatusNoShow,
	StatusFailed,
}

// IsActiveStatus reports whether the status participates in overlap checking
func IsActiveStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// IsTerminalStatus reports whether the status is terminal
func IsTerminalStatus(s BookingStatus) bool {
	switch s {
	case StatusCompleted, StatusCanceled, StatusNoShow, StatusFailed:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known booking status
func IsValidStatus(s BookingStatus) bool {
	return IsActiveStatus(s) || IsTerminalStatus(s)
}

// BookingAction is an explicit admin/customer intent applied to a booking.
// Actions never set the persisted status directly; ResolveStatus recomputes it.
type BookingAction string

const (
	ActionNone       BookingAction = ""
	ActionConfirm    BookingAction = "confirm"
	ActionCheckIn    BookingAction = "check_in"
	ActionComplete   BookingAction = "complete"
	ActionCancel     BookingAction = "cancel"
	ActionMarkNoShow BookingAction = "mark_no_show"
)

// impliedStatus maps direct actions to the status they request.
// cancel and mark_no_show act through canceled_at / no_show_flag instead.
var impliedStatus = map[BookingAction]BookingStatus{
	ActionConfirm:  StatusConfirmed,
	ActionCheckIn:  StatusCheckedIn,
	ActionComplete: StatusCompleted,
}

// ResolveStatus recomputes the persisted status of a booking from its markers
// and the explicit action being applied. Precedence, highest first:
//
//  1. canceled_at set          -> canceled (a cancel always wins, even racing a check-in)
//  2. no_show_flag set         -> no_show  (wins over confirm/complete)
//  3. prior status terminal    -> prior    (terminal states are not re-enterable)
//  4. status implied by action -> that status
//  5. otherwise                -> prior status
//
// The result is a pure function of its inputs; no caller may assign status
// directly.
func ResolveStatus(canceledAt *time.Time, noShowFlag bool, action BookingAction, prior BookingStatus) BookingStatus {
	if canceledAt != nil {
		return StatusCanceled
	}
	if noShowFlag {
		return StatusNoShow
	}
	if IsTerminalStatus(prior) {
		return prior
	}
	if implied, ok := impliedStatus[action]; ok {
		return implied
	}
	return prior
}
