package authclient

// Attempt tags one send of a request. A request is retried at most once, so the only state is
// whether this send is that retry.
type Attempt struct {
	Retried bool
}

func (a Attempt) retry() Attempt {
	return Attempt{Retried: true}
}
