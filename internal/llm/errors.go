package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies completion failures.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindStatus     ErrorKind = "status"
	KindCredential ErrorKind = "credential"
	KindMalformed  ErrorKind = "malformed"
)

// APIError is returned for every failed completion. Status is set for
// KindStatus only.
type APIError struct {
	Kind     ErrorKind
	Provider string
	Status   int
	Err      error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s API error (%s, %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s API error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func networkError(provider string, err error) error {
	return &APIError{Kind: KindNetwork, Provider: provider, Err: err}
}

func statusError(provider string, status int, text, body string) error {
	return &APIError{Kind: KindStatus, Provider: provider, Status: status, Err: fmt.Errorf("%s (%s)", text, clipText(body, 500))}
}

func malformedError(provider string, err error) error {
	return &APIError{Kind: KindMalformed, Provider: provider, Err: err}
}

func credentialError(provider string, err error) error {
	return &APIError{Kind: KindCredential, Provider: provider, Err: err}
}
