package types

// Status gates whether a player's round score counts toward their total.
type Status string

const (
	StatusOut    Status = "out"
	StatusRescue Status = "rescue"
)

// ParseStatus resolves any input to a valid status.
// Only the literal "out" maps to StatusOut.
func ParseStatus(s string) Status {
	if s == string(StatusOut) {
		return StatusOut
	}
	return StatusRescue
}

func (s Status) String() string {
	return string(s)
}
