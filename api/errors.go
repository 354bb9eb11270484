package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies server failures so callers can switch on the condition
// instead of parsing message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuth: the bearer token was rejected (401). The client has already
	// cleared the token that was in use.
	KindAuth
	// KindBusiness: a 4xx with a human-readable message; the flow stays on the
	// current step so the user can retry.
	KindBusiness
	// KindDuplicateSubscription: the user already holds an active subscription
	// for the project. Routed to a dedicated outcome rather than a generic
	// error surface.
	KindDuplicateSubscription
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork
)

// Error is a failure reported by (or on the way to) the SunYield API.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("sunyield api: request failed with status %d", e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Legacy servers signal a duplicate subscription only through message text.
// Newer servers send code DUPLICATE_SUBSCRIPTION; the substrings keep old
// deployments working.
var duplicateSubscriptionPhrases = []string{
	"already subscribed to this project",
	"already have an active subscription",
	"already subscribed",
}

func classify(status int, code, message string) ErrorKind {
	if status == 401 {
		return KindAuth
	}
	if code == "DUPLICATE_SUBSCRIPTION" {
		return KindDuplicateSubscription
	}
	lower := strings.ToLower(message)
	for _, phrase := range duplicateSubscriptionPhrases {
		if strings.Contains(lower, phrase) {
			return KindDuplicateSubscription
		}
	}
	if status >= 400 && status < 500 && message != "" {
		return KindBusiness
	}
	return KindUnknown
}

// NewError builds a classified Error from a status, machine code and message.
func NewError(status int, code, message string) *Error {
	return &Error{
		Kind:       classify(status, code, message),
		StatusCode: status,
		Code:       code,
		Message:    message,
	}
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// KindOf extracts the ErrorKind from any error returned by this package.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsDuplicateSubscription reports whether err is the duplicate-subscription
// business condition.
func IsDuplicateSubscription(err error) bool {
	return KindOf(err) == KindDuplicateSubscription
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return KindOf(err) == KindAuth
}
