// Package ldap provides the directory transport for the provisioning
// layer: a single-connection session with simple-bind, Kerberos and
// anonymous authentication, categorized errors mapped from LDAP result
// codes, retry with exponential backoff for transient failures, and
// RFC 4514 DN value escaping.
//
// A Client wraps exactly one connection to one directory endpoint.
// Sessions share no in-process state; callers wanting concurrency open
// one session each. Every operation is a blocking round trip bounded by
// the context and the configured network timeout.
//
// ModifyRequest deserves a note: a directory applies a modify operation
// atomically, so a request that deletes a specific old attribute value
// and adds its replacement acts as a compare-and-swap on that attribute.
// The counter-allocation and group-membership layers above this package
// are built entirely on that property.
package ldap
