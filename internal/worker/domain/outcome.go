package domain

// Outcome is the terminal result of one processing attempt.
type Outcome string

const (
	// OutcomeSucceeded means the job completed and the message was deleted.
	OutcomeSucceeded Outcome = "SUCCEEDED"
	// OutcomeRetry means the attempt failed and the message is left for
	// the queue's native redelivery.
	OutcomeRetry Outcome = "RETRY"
	// OutcomeDeadLetter means the retry budget is exhausted and the
	// message was routed to the dead-letter queue.
	OutcomeDeadLetter Outcome = "DEAD_LETTER"
)
