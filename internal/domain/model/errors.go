package model

import "fmt"

// DuplicateKeyError defines a uniqueness violation on a device field.
type DuplicateKeyError struct {
	Field string
	Value string
}

// Error formats output.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("a device already exists with the %s %q", e.Field, e.Value)
}

// NotFoundError defines a missing device.
type NotFoundError struct {
	Key string
}

// Error formats output.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no device found with the key %q", e.Key)
}

// ValidationError defines a rejected field value.
type ValidationError struct {
	Field  string
	Reason string
}

// Error formats output.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CloudError defines a non-success envelope returned by the cloud API.
// Message is the cloud's text, safe to show to a user.
type CloudError struct {
	Code    int
	Message string
}

// Error formats output.
func (e *CloudError) Error() string {
	return e.Message
}

// TransportError defines a failure to reach the cloud API.
// The cause is kept for logs only; Error never exposes it.
type TransportError struct {
	Err error
}

// Error formats output.
func (e *TransportError) Error() string {
	return "Internal error"
}

// Unwrap returns the network-level cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// CorruptStoreError defines a backing file that cannot be decoded.
type CorruptStoreError struct {
	Path string
	Err  error
}

// Error formats output.
func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store %s: %v", e.Path, e.Err)
}

// Unwrap returns the decode error.
func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}
