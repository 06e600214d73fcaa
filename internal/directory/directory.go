// Package directory implements the identity-provisioning layer for a
// POSIX/Samba directory: counter-based uid/gid/RID allocation, the
// dual-attribute group membership encoding, and the user, group and
// machine-account lifecycles built on them.
//
// Objects returned by this package are transient views materialized from
// directory state per query; the directory itself is the only source of
// truth. A Directory wraps one transport session and is not safe for
// concurrent use; concurrent callers open one Directory each.
package directory

import (
	"context"
	"time"

	"github.com/mithridate/ldapadm/internal/ldap"
)

// Directory is a handle over one directory session, bundling the
// provisioning managers with their shared addressing and configuration.
type Directory struct {
	client ldap.Client

	Addressing  *Addressing
	Domains     *Domains
	Counters    *Allocator
	Groups      *Groups
	Memberships *Memberships
	Users       *Users
	Computers   *Computers
}

// New assembles a Directory over an open session. authDial opens an
// independent throwaway session for credential checks; it may be nil if
// Authenticate is never used.
func New(client ldap.Client, opts *Options,
	authDial func(ctx context.Context) (ldap.Client, error)) *Directory {

	retries := opts.AllocateRetries
	if retries <= 0 {
		retries = 5
	}
	backoff := opts.AllocateBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}

	wellKnown := opts.WellKnown
	if wellKnown == (WellKnownGroups{}) {
		wellKnown = DefaultWellKnownGroups()
	}

	addr := NewAddressing(opts.BaseDN, opts.UserBase, opts.GroupBase, opts.ComputerBase)
	domains := NewDomains(client, opts.BaseDN)
	alloc := NewAllocator(client, retries, backoff)
	groups := NewGroups(client, addr, wellKnown)
	members := NewMemberships(client, addr)

	return &Directory{
		client:      client,
		Addressing:  addr,
		Domains:     domains,
		Counters:    alloc,
		Groups:      groups,
		Memberships: members,
		Users:       NewUsers(client, addr, groups, members, alloc, domains, opts.CounterDN, authDial),
		Computers:   NewComputers(client, addr, groups, alloc, domains, opts.CounterDN),
	}
}

// Open connects a new session and assembles a Directory over it. The
// returned handle owns the session and must be released with Close.
func Open(ctx context.Context, ldapConfig *ldap.Config, opts *Options) (*Directory, error) {
	client, err := ldap.Connect(ctx, ldapConfig)
	if err != nil {
		return nil, err
	}

	authDial := func(ctx context.Context) (ldap.Client, error) {
		cfg := *ldapConfig
		cfg.BindDN = ""
		cfg.BindPassword = ""
		cfg.KerberosRealm = ""
		return ldap.Connect(ctx, &cfg)
	}

	dir := New(client, opts, authDial)
	if ldapConfig.GetAuthMethod() == ldap.AuthMethodSimpleBind {
		dir.Users.SetSessionDN(ldapConfig.BindDN)
	}
	return dir, nil
}

// Close releases the underlying session.
func (d *Directory) Close() error {
	return d.client.Close()
}

// Ping verifies the underlying session is usable.
func (d *Directory) Ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}
