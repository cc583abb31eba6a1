package entity

import "time"

// State is the terminal-or-not position of an order. Payment is tracked
// separately because it is orthogonal: an active or delivered order may be
// paid or unpaid.
type State int

const (
	StateActive State = iota
	StateCancelled
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateCancelled:
		return "cancelled"
	case StateDelivered:
		return "delivered"
	default:
		return "active"
	}
}

type Action string

const (
	ActionPay     Action = "pay"
	ActionDeliver Action = "deliver"
	ActionCancel  Action = "cancel"
)

// Actor is who asks for a transition.
type Actor struct {
	UserID  string
	IsAdmin bool
}

type TransitionKind int

const (
	// TransitionInvalid: the order's current state does not allow the action.
	TransitionInvalid TransitionKind = iota
	// TransitionForbidden: the actor may not perform the action on this order.
	TransitionForbidden
)

// TransitionError is a rejected lifecycle transition. The package-level
// values below are compared by identity with errors.Is.
type TransitionError struct {
	Kind   TransitionKind
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

var (
	ErrNotOrderOwner      = &TransitionError{Kind: TransitionForbidden, Reason: "not authorized to cancel this order"}
	ErrAdminRequired      = &TransitionError{Kind: TransitionForbidden, Reason: "not authorized as admin"}
	ErrAlreadyCancelled   = &TransitionError{Kind: TransitionInvalid, Reason: "order already cancelled"}
	ErrCancelDelivered    = &TransitionError{Kind: TransitionInvalid, Reason: "cannot cancel a delivered order"}
	ErrCancelPaid         = &TransitionError{Kind: TransitionInvalid, Reason: "cannot cancel a paid order"}
	ErrAlreadyDelivered   = &TransitionError{Kind: TransitionInvalid, Reason: "order already delivered"}
	ErrDeliverCancelled   = &TransitionError{Kind: TransitionInvalid, Reason: "cannot deliver a cancelled order"}
	ErrAlreadyPaid        = &TransitionError{Kind: TransitionInvalid, Reason: "order already paid"}
	ErrPayCancelled       = &TransitionError{Kind: TransitionInvalid, Reason: "order is cancelled"}
	ErrUnknownOrderAction = &TransitionError{Kind: TransitionInvalid, Reason: "unknown order action"}
)

// State derives the tagged state from the stored flags.
func (o *Order) State() State {
	switch {
	case o.IsDelivered:
		return StateDelivered
	case o.IsCancelled:
		return StateCancelled
	default:
		return StateActive
	}
}

// IsOwnedBy reports whether userID created the order.
func (o *Order) IsOwnedBy(userID string) bool {
	return userID != "" && o.UserID == userID
}

// CanView reports whether actor may read the order.
func (o *Order) CanView(actor Actor) bool {
	return actor.IsAdmin || o.IsOwnedBy(actor.UserID)
}

// CheckTransition reports whether actor may apply action to o, without
// changing it.
func CheckTransition(o *Order, action Action, actor Actor) error {
	state := o.State()
	switch action {
	case ActionPay:
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		if state == StateCancelled {
			return ErrPayCancelled
		}
		if o.IsPaid {
			return ErrAlreadyPaid
		}
		return nil

	case ActionDeliver:
		if !actor.IsAdmin {
			return ErrAdminRequired
		}
		switch state {
		case StateCancelled:
			return ErrDeliverCancelled
		case StateDelivered:
			return ErrAlreadyDelivered
		}
		return nil

	case ActionCancel:
		if !actor.IsAdmin && !o.IsOwnedBy(actor.UserID) {
			return ErrNotOrderOwner
		}
		switch state {
		case StateCancelled:
			return ErrAlreadyCancelled
		case StateDelivered:
			return ErrCancelDelivered
		}
		if o.IsPaid && !actor.IsAdmin {
			return ErrCancelPaid
		}
		return nil
	}
	return ErrUnknownOrderAction
}

// ApplyTransition is the only place order status flags change. On rejection
// the order is left untouched.
func ApplyTransition(o *Order, action Action, actor Actor, now time.Time) error {
	if err := CheckTransition(o, action, actor); err != nil {
		return err
	}
	at := now
	switch action {
	case ActionPay:
		o.IsPaid = true
		o.PaidAt = &at
	case ActionDeliver:
		o.IsDelivered = true
		o.DeliveredAt = &at
	case ActionCancel:
		o.IsCancelled = true
		o.CancelledAt = &at
	}
	o.UpdatedAt = now
	return nil
}
