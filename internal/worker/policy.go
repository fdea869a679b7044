package worker

// DefaultMaxReceives is the retry budget: a message failing on its 11th
// delivery (ten prior attempts) is routed to the dead-letter queue.
const DefaultMaxReceives = 10

// Decision is the queue action chosen for a failed attempt.
type Decision int

const (
	// DecisionRetry leaves the message on the source queue; the
	// visibility timeout makes it redeliverable. No explicit action.
	DecisionRetry Decision = iota
	// DecisionDeadLetter routes the message to the dead-letter queue and
	// deletes it from the source queue.
	DecisionDeadLetter
)

func (d Decision) String() string {
	if d == DecisionDeadLetter {
		return "dead_letter"
	}
	return "retry"
}

// Policy decides what to do with a failed message based solely on the
// queue-supplied receive count. It is stateless: the count is read from
// the message metadata on every attempt, never cached locally, since a
// redelivery may land on a different worker instance.
//
// The rule is uniform across failure classes. A 404 consumes the same
// budget as a timeout; the transient/permanent split only shapes logs.
type Policy struct {
	MaxReceives int
}

// NewPolicy creates a Policy; non-positive thresholds fall back to
// DefaultMaxReceives.
func NewPolicy(maxReceives int) Policy {
	if maxReceives <= 0 {
		maxReceives = DefaultMaxReceives
	}
	return Policy{MaxReceives: maxReceives}
}

// Decide returns the queue action for a failed attempt given the
// message's current receive count.
func (p Policy) Decide(receiveCount int) Decision {
	if receiveCount > p.MaxReceives {
		return DecisionDeadLetter
	}
	return DecisionRetry
}
