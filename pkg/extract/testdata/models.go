// Package testdata contains example Go types annotated for schema
// extraction; pkg/extract's tests load this package directly.
package testdata

// Status represents the processing status of a user account.
type Status int32

const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

// Priority is a uint8-backed enum.
type Priority uint8

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// Address represents a physical address.
type Address struct {
	Street  string `wireforge:"street"`
	City    string `wireforge:"city"`
	Country string `wireforge:"country"`
	ZipCode string `wireforge:"zip_code"`
}

// User represents a user in the system.
type User struct {
	ID       int64    `wireforge:"id,be"`
	Name     string   `wireforge:"name"`
	Status   Status   `wireforge:"status"`
	Age      int32    `wireforge:"age"`
	Tags     []string `wireforge:"tags"`
	Address  *Address `wireforge:"address"`
	Internal string   `wireforge:"-"`

	// Metadata has no representable wire type (a Go map); extraction
	// skips it and records a warning rather than failing.
	Metadata map[string]string `wireforge:"metadata"`

	mu int32 // unexported, excluded by default
}

// Admin is a user with admin privileges.
type Admin struct {
	Name        string   `wireforge:"name"`
	Permissions []string `wireforge:"permissions"`
}

// Account groups every account-bearing type behind one variant: wireforge
// has no interface of its own, so an empty marker interface is how a Go
// schema author declares "these structs are interchangeable members."
type Account interface{}

// privateType is unexported and excluded from extraction by default.
type privateType struct {
	Value int32
}
