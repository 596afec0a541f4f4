package user

// Decision is the routing outcome for an import record.
type Decision int

const (
	CreateNow Decision = iota
	Defer
)

func (d Decision) String() string {
	switch d {
	case CreateNow:
		return "create_now"
	case Defer:
		return "defer"
	default:
		return "unknown"
	}
}

// Decide routes a record: records without a date, or dated today or earlier,
// are created now. Only strictly future dates go to the waitlist.
func Decide(record ImportRecord, today Date) Decision {
	if !record.HasActivationDate() {
		return CreateNow
	}
	if record.ActivationDate.After(today) {
		return Defer
	}
	return CreateNow
}
