package metrics

const Namespace = "tasktracker"

const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelState     = "state"
	LabelEvent     = "event"
)

// Outcomes recorded for task operations.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeForbidden    = "forbidden"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)
