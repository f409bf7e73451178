package dat

import "fmt"

// AuthError reports a failed token issuance. It is fatal to the request that
// triggered it and is surfaced to the caller.
type AuthError struct {
	Environment string
	Stage       string // "organization" or "user"
	Status      int
	Err         error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("dat %s authentication (%s token): status %d", e.Environment, e.Stage, e.Status)
	}
	return fmt.Sprintf("dat %s authentication (%s token): %v", e.Environment, e.Stage, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SearchError reports a rejected or failed search call. Fatal to the request.
type SearchError struct {
	Op     string
	Status int
	Err    error
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("dat %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("dat %s: %v", e.Op, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
