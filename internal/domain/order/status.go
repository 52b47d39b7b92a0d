package order

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus maps a request string onto a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// allows reports whether an order in status s may move to a different
// status to. Same-status updates are handled by the caller as no-ops, and
// cancelled orders never reach this check: they are filtered out at lookup.
func (s Status) allows(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed, StatusCancelled:
		return false
	}
	return false
}
