// Package testdata is a sample API surface exercised by the provider tests.
package testdata

import "time"

// User is an account holder.
type User struct {
	// ID is the unique account identifier.
	ID   string `json:"id"`
	Name string `json:"name"`
	// Email is optional at signup.
	Email     string    `json:"email,omitempty"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Labels    []string  `json:"labels,omitempty"`
	Attrs     map[string]string
	internal  string
	Skipped   string `json:"-"`
}

// Account is the historical name for User.
type Account = User

// Status classifies a user account.
type Status string

const (
	// StatusActive marks a usable account.
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
)

// Store persists users.
type Store interface {
	// Get returns the user with the given id.
	Get(id string) (*User, error)
	Put(u *User) error
}

// Connect opens a store at the given address.
//
// Deprecated: use ConnectContext instead.
func Connect(addr string, retries int) (*User, error) {
	_ = addr
	_ = retries
	return nil, nil
}

// MaxRetries bounds reconnect attempts.
const MaxRetries = 5

// DefaultLabels are applied to every new user.
var DefaultLabels = []string{"new"}
