package authorization

// Outcome classifies the answer of one external authorization service.
type Outcome int

const (
	// OutcomeUnreachable covers network errors, timeouts, non-2xx statuses and
	// bodies that are not JSON.
	OutcomeUnreachable Outcome = iota
	// OutcomeUnauthorized means the service answered but did not accept the email.
	OutcomeUnauthorized
	OutcomeAuthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthorized:
		return "authorized"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "unreachable"
	}
}

// Response is the output of an authorization handler.
type Response struct {
	Outcome       Outcome
	EntryURL      *string
	ContactHandle *string

	// Err explains an unreachable outcome. It is nil otherwise.
	Err error
}

func Authorized(entryURL, contactHandle *string) Response {
	return Response{
		Outcome:       OutcomeAuthorized,
		EntryURL:      entryURL,
		ContactHandle: contactHandle,
	}
}

func Unauthorized() Response {
	return Response{Outcome: OutcomeUnauthorized}
}

func Unreachable(err error) Response {
	return Response{
		Outcome: OutcomeUnreachable,
		Err:     err,
	}
}
