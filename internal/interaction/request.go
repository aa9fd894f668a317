package interaction

type requestState uint8

const (
	requestIdle requestState = iota
	requestPending
	requestConsumed
)

// Request is a one-shot "generate the default shape" token. It is raised by
// UI actions and consumed exactly once by the dispatch loop.
type Request struct {
	state requestState
}

// Set raises the request.
func (r *Request) Set() {
	r.state = requestPending
}

// Pending reports whether the request is raised and not yet consumed.
func (r *Request) Pending() bool {
	return r.state == requestPending
}

// Clear marks a pending request consumed. It is a no-op otherwise.
func (r *Request) Clear() {
	if r.state == requestPending {
		r.state = requestConsumed
	}
}

// Consume returns true exactly once per Set.
func (r *Request) Consume() bool {
	if !r.Pending() {
		return false
	}
	r.state = requestConsumed
	return true
}

// Consumed reports whether the last raised request has been served.
func (r *Request) Consumed() bool {
	return r.state == requestConsumed
}
