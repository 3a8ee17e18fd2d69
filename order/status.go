package order

// Status represents the remote swap order lifecycle as reported by the venue.
// The venue knows fourteen states; StatusClear and StatusCreating are local-only
// placeholders used by the virtual book.
type Status string

const (
	// local-only
	StatusClear    Status = "clear"    // slot not associated with a remote order
	StatusCreating Status = "creating" // submitted, waiting for first remote report

	// remote open flow
	StatusNew         Status = "new"         // created, not yet broadcasted
	StatusOpen        Status = "open"        // resting, waiting for taker
	StatusAccepting   Status = "accepting"   // taker accepting order
	StatusHold        Status = "hold"        // counterparties acknowledge each other
	StatusInitialized Status = "initialized" // counterparties agree on order
	StatusCreated     Status = "created"     // swap process starting
	StatusCommited    Status = "commited"    // swap finalized (venue spelling)

	// remote terminal
	StatusFinished       Status = "finished"
	StatusExpired        Status = "expired"
	StatusOffline        Status = "offline"
	StatusCanceled       Status = "canceled"
	StatusInvalid        Status = "invalid"
	StatusRolledBack     Status = "rolled back"
	StatusRollbackFailed Status = "rollback failed"
)

// openFlow are the states counted as in-progress by the opened counter.
// new is excluded: the order is not broadcasted yet, the reopen gate only
// counts orders a taker could actually see.
var openFlow = map[Status]bool{
	StatusOpen:        true,
	StatusAccepting:   true,
	StatusHold:        true,
	StatusInitialized: true,
	StatusCreated:     true,
	StatusCommited:    true,
}

// reopenBase are the states whose slot is always eligible for a new placement.
var reopenBase = map[Status]bool{
	StatusClear:          true,
	StatusExpired:        true,
	StatusOffline:        true,
	StatusCanceled:       true,
	StatusInvalid:        true,
	StatusRolledBack:     true,
	StatusRollbackFailed: true,
}

// InOpenFlow reports whether the status counts toward the opened counter.
func (s Status) InOpenFlow() bool { return openFlow[s] }

// Finished reports whether the remote order completed a swap.
func (s Status) Finished() bool { return s == StatusFinished }

// Takeable reports whether the order can still be canceled or taken.
func (s Status) Takeable() bool { return s == StatusNew || s == StatusOpen }

// ReopenEligible reports whether a slot in this status may place a new order.
// Finished slots join the set only when the reopen-on-finish feature is on.
func (s Status) ReopenEligible(reopenFinished bool) bool {
	if reopenBase[s] {
		return true
	}
	return reopenFinished && s == StatusFinished
}

// RemoteOrder 是 venue 返回的订单记录（dxGetMyOrders 的一行）。
type RemoteOrder struct {
	ID        string
	Maker     string
	Taker     string
	MakerSize float64
	TakerSize float64
	Status    Status
}

// Price 返回 taker/maker 隐含价格，size 异常时为 0。
func (r RemoteOrder) Price() float64 {
	if r.MakerSize <= 0 {
		return 0
	}
	return r.TakerSize / r.MakerSize
}
