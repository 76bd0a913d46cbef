package workflow

// State represents a document status in the approval lifecycle
type State string

const (
	StateDraft           State = "DRAFT"
	StatePendingApproval State = "PENDING_APPROVAL"
	StateApproved        State = "APPROVED"
	StateRejected        State = "REJECTED"
	StatePosted          State = "POSTED"
	StateCancelled       State = "CANCELLED"
)

var validStates = map[State]bool{
	StateDraft:           true,
	StatePendingApproval: true,
	StateApproved:        true,
	StateRejected:        true,
	StatePosted:          true,
	StateCancelled:       true,
}

// POSTED and CANCELLED permit no further transitions. REJECTED is not
// terminal: a rejected document may be resubmitted, obtaining a new
// approval instance.
var terminalStates = map[State]bool{
	StatePosted:    true,
	StateCancelled: true,
}

// IsTerminal returns true if no further transitions are allowed from s.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if s is a known document state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
