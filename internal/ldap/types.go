package ldap

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Config holds configuration for a directory session.
type Config struct {
	// Connection settings
	URL     string        // LDAP URL (ldap://, ldaps://, ldapi://)
	Timeout time.Duration // Network timeout for directory operations

	// Authentication settings
	BindDN         string // DN for simple bind (empty for anonymous)
	BindPassword   string // Password for simple bind
	KerberosRealm  string // Kerberos realm for GSSAPI authentication
	KerberosKeytab string // Path to Kerberos keytab file
	KerberosConfig string // Path to krb5.conf
	KerberosSPN    string // Explicit service principal override

	// TLS settings
	TLSConfig *tls.Config // Custom TLS configuration
	StartTLS  bool        // Upgrade a plain connection with StartTLS
	SkipTLS   bool        // Allow plaintext without StartTLS

	// Retry settings
	MaxRetries     int           // Maximum retry attempts for transient failures
	InitialBackoff time.Duration // Initial backoff duration
	MaxBackoff     time.Duration // Maximum backoff duration
	BackoffFactor  float64       // Backoff multiplication factor
}

// DefaultConfig returns a secure default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// Client is a single authenticated or anonymous directory session.
// A Client owns exactly one connection; callers wanting concurrency open
// independent sessions which share no in-process state.
type Client interface {
	// Connection management
	Close() error

	// Authentication
	Bind(ctx context.Context, dn, password string) error
	BindWithConfig(ctx context.Context) error // Uses credentials from Config

	// Basic operations
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Add(ctx context.Context, req *AddRequest) error
	Modify(ctx context.Context, req *ModifyRequest) error
	Delete(ctx context.Context, dn string) error
	PasswordModify(ctx context.Context, dn, oldPassword, newPassword string) error

	// Health
	Ping(ctx context.Context) error
}

// SearchRequest encapsulates LDAP search parameters.
type SearchRequest struct {
	BaseDN     string
	Scope      SearchScope
	Filter     string
	Attributes []string
	SizeLimit  int
	TimeLimit  time.Duration
}

// SearchResult contains search results.
type SearchResult struct {
	Entries []*ldap.Entry
}

// AttributeChange describes one attribute edit within a modify operation.
type AttributeChange struct {
	Name   string
	Values []string // Empty on a delete removes the whole attribute
}

// ModifyRequest encapsulates LDAP modify parameters. All changes in one
// request are applied by the directory as a single atomic operation; the
// allocation and membership layers rely on this: deleting a specific old
// value and adding its replacement in the same request is a
// compare-and-swap on that attribute.
type ModifyRequest struct {
	DN       string
	Adds     []AttributeChange
	Replaces []AttributeChange
	Deletes  []AttributeChange
}

// Add appends an add-values change.
func (r *ModifyRequest) Add(name string, values ...string) *ModifyRequest {
	r.Adds = append(r.Adds, AttributeChange{Name: name, Values: values})
	return r
}

// Replace appends a replace-values change.
func (r *ModifyRequest) Replace(name string, values ...string) *ModifyRequest {
	r.Replaces = append(r.Replaces, AttributeChange{Name: name, Values: values})
	return r
}

// Delete appends a delete-values change. With no values the whole attribute
// is removed; with values only those specific values are, and the modify
// fails if any of them is absent.
func (r *ModifyRequest) Delete(name string, values ...string) *ModifyRequest {
	r.Deletes = append(r.Deletes, AttributeChange{Name: name, Values: values})
	return r
}

// AddRequest encapsulates LDAP add parameters.
type AddRequest struct {
	DN         string
	Attributes map[string][]string
}

// SearchScope defines LDAP search scope.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeWholeSubtree
)

// String returns the string representation of the search scope.
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// AuthMethod defines authentication method types.
type AuthMethod int

const (
	AuthMethodAnonymous  AuthMethod = iota // No credentials
	AuthMethodSimpleBind                   // DN/password authentication
	AuthMethodKerberos                     // GSSAPI/Kerberos authentication
)

// String returns string representation of authentication method.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodAnonymous:
		return "anonymous"
	case AuthMethodSimpleBind:
		return "simple"
	case AuthMethodKerberos:
		return "kerberos"
	default:
		return "unknown"
	}
}

// GetAuthMethod determines the authentication method from the configuration.
func (c *Config) GetAuthMethod() AuthMethod {
	if c.KerberosRealm != "" && (c.KerberosKeytab != "" || c.BindDN != "") {
		return AuthMethodKerberos
	}
	if c.BindDN != "" {
		return AuthMethodSimpleBind
	}
	return AuthMethodAnonymous
}

// RetryableError indicates an error that can be retried.
type RetryableError interface {
	error
	IsRetryable() bool
}

// ConnectionError represents connection-related errors.
type ConnectionError struct {
	message   string
	retryable bool
	cause     error
}

func (e *ConnectionError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ConnectionError) IsRetryable() bool {
	return e.retryable
}

func (e *ConnectionError) Unwrap() error {
	return e.cause
}

// NewConnectionError creates a new connection error.
func NewConnectionError(message string, retryable bool, cause error) *ConnectionError {
	return &ConnectionError{
		message:   message,
		retryable: retryable,
		cause:     cause,
	}
}
