package directory

import (
	"context"
	"fmt"
	"strconv"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
	"github.com/mithridate/ldapadm/internal/logger"
)

// computerObjectClasses is part of the schema contract, like the user
// classes: machine accounts are POSIX accounts on a device entry, with
// no authenticatable login shell.
var computerObjectClasses = []string{
	"top",
	"device",
	"posixAccount",
	"shadowAccount",
}

// Computers provisions and manages machine accounts. They follow the
// user shape but with a disabled shell, a sentinel home directory, and
// their password set only through the directory's native operation.
type Computers struct {
	client    ldap.Client
	addr      *Addressing
	groups    *Groups
	alloc     *Allocator
	domains   *Domains
	counterDN string // empty means the domain entry
}

// NewComputers creates a machine-account manager.
func NewComputers(client ldap.Client, addr *Addressing, groups *Groups,
	alloc *Allocator, domains *Domains, counterDN string) *Computers {
	return &Computers{
		client:    client,
		addr:      addr,
		groups:    groups,
		alloc:     alloc,
		domains:   domains,
		counterDN: counterDN,
	}
}

// Create provisions a machine account in the well-known computers group.
func (c *Computers) Create(ctx context.Context, name, password string) (*Principal, error) {
	if name == "" {
		return nil, fmt.Errorf("computer name is required")
	}

	primary, err := c.groups.Computers(ctx)
	if err != nil {
		return nil, err
	}

	domain, err := c.domains.Find(ctx)
	if err != nil {
		return nil, err
	}
	counterDN := c.counterDN
	if counterDN == "" {
		counterDN = domain.DN
	}

	uidNumber, err := c.alloc.AllocateWithRetry(ctx, counterDN, CounterUID)
	if err != nil {
		return nil, err
	}

	dn, err := c.addr.ComputerDN(name)
	if err != nil {
		return nil, err
	}

	addReq := &ldap.AddRequest{
		DN: dn,
		Attributes: map[string][]string{
			"objectClass":   computerObjectClasses,
			"uid":           {name},
			"cn":            {name},
			"uidNumber":     {strconv.Itoa(uidNumber)},
			"gidNumber":     {strconv.Itoa(primary.GID)},
			"homeDirectory": {"/nonexistent"},
			"loginShell":    {"/bin/false"},
			"description":   {"Computer"},
			"gecos":         {"Computer"},
		},
	}
	if err := c.client.Add(ctx, addReq); err != nil {
		return nil, ldap.WrapError("create_computer", err)
	}

	if err := c.client.PasswordModify(ctx, dn, "", password); err != nil {
		return nil, ldap.WrapError("create_computer", err)
	}

	logger.Info("computer account created",
		"name", name,
		"uid_number", uidNumber,
	)

	return &Principal{
		UID:       name,
		DN:        dn,
		UIDNumber: uidNumber,
		GIDNumber: primary.GID,
	}, nil
}

// Lookup resolves a machine account by name.
func (c *Computers) Lookup(ctx context.Context, name string) (*Principal, error) {
	if err := ldap.ValidateRDNValue(name); err != nil {
		return nil, err
	}

	result, err := c.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     c.addr.ComputerBase,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     fmt.Sprintf("(uid=%s)", goldap.EscapeFilter(name)),
		Attributes: principalAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("lookup_computer", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ldap.NewCategorizedError("lookup_computer", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("computer %q not found", name))
	case 1:
		return entryToPrincipal(result.Entries[0])
	default:
		return nil, ldap.NewCategorizedError("lookup_computer", ldap.ErrorCategoryTooMany,
			fmt.Sprintf("%d computers match %q", len(result.Entries), name))
	}
}

// List returns every machine account in the computer container.
func (c *Computers) List(ctx context.Context) ([]*Principal, error) {
	result, err := c.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     c.addr.ComputerBase,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     "(uid=*)",
		Attributes: principalAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("list_computers", err)
	}

	computers := make([]*Principal, 0, len(result.Entries))
	for _, entry := range result.Entries {
		principal, err := entryToPrincipal(entry)
		if err != nil {
			return nil, err
		}
		computers = append(computers, principal)
	}
	return computers, nil
}

// ResetPassword sets a machine account's secret through the directory's
// native password operation. Machine accounts carry no NTLM attribute to
// maintain.
func (c *Computers) ResetPassword(ctx context.Context, principal *Principal, newPassword string) error {
	if err := c.client.PasswordModify(ctx, principal.DN, "", newPassword); err != nil {
		return ldap.WrapError("reset_computer_password", err)
	}
	return nil
}

// Delete removes a machine account.
func (c *Computers) Delete(ctx context.Context, principal *Principal) error {
	if err := c.client.Delete(ctx, principal.DN); err != nil {
		return ldap.WrapError("delete_computer", err)
	}
	logger.Info("computer deleted", "name", principal.UID)
	return nil
}
