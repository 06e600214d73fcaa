package directory

import (
	"context"
	"fmt"
	"strconv"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
)

var groupAttributes = []string{"cn", "gidNumber"}

// Groups resolves and lists group entries. Resolved groups are transient
// views; nothing is cached between calls.
type Groups struct {
	client    ldap.Client
	addr      *Addressing
	wellKnown WellKnownGroups
}

// NewGroups creates a group resolver.
func NewGroups(client ldap.Client, addr *Addressing, wellKnown WellKnownGroups) *Groups {
	return &Groups{client: client, addr: addr, wellKnown: wellKnown}
}

// ByName resolves a group by its cn within the group container.
func (g *Groups) ByName(ctx context.Context, cn string) (*Group, error) {
	if err := ldap.ValidateRDNValue(cn); err != nil {
		return nil, err
	}
	return g.resolve(ctx, g.addr.GroupBase, ldap.ScopeWholeSubtree,
		fmt.Sprintf("(cn=%s)", goldap.EscapeFilter(cn)), cn)
}

// ByGID resolves a group by its gidNumber within the group container.
func (g *Groups) ByGID(ctx context.Context, gid int) (*Group, error) {
	return g.resolve(ctx, g.addr.GroupBase, ldap.ScopeWholeSubtree,
		fmt.Sprintf("(gidNumber=%d)", gid), strconv.Itoa(gid))
}

// ByDN resolves a group entry directly by its DN.
func (g *Groups) ByDN(ctx context.Context, dn string) (*Group, error) {
	return g.resolve(ctx, dn, ldap.ScopeBaseObject, "(objectClass=*)", dn)
}

// List returns every group in the group container.
func (g *Groups) List(ctx context.Context) ([]*Group, error) {
	result, err := g.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     g.addr.GroupBase,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     "(gidNumber=*)",
		Attributes: groupAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("list_groups", err)
	}

	groups := make([]*Group, 0, len(result.Entries))
	for _, entry := range result.Entries {
		group, err := entryToGroup(entry)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DefaultUsers resolves the well-known default primary group for users.
func (g *Groups) DefaultUsers(ctx context.Context) (*Group, error) {
	return g.ByName(ctx, g.wellKnown.Users)
}

// Guests resolves the well-known guest group.
func (g *Groups) Guests(ctx context.Context) (*Group, error) {
	return g.ByName(ctx, g.wellKnown.Guests)
}

// Computers resolves the well-known machine-account group.
func (g *Groups) Computers(ctx context.Context) (*Group, error) {
	return g.ByName(ctx, g.wellKnown.Computers)
}

// resolve runs a group search that must match exactly one entry.
func (g *Groups) resolve(ctx context.Context, baseDN string, scope ldap.SearchScope, filter, wanted string) (*Group, error) {
	result, err := g.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     baseDN,
		Scope:      scope,
		Filter:     filter,
		Attributes: groupAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("resolve_group", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ldap.NewCategorizedError("resolve_group", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("group %q not found", wanted))
	case 1:
		return entryToGroup(result.Entries[0])
	default:
		return nil, ldap.NewCategorizedError("resolve_group", ldap.ErrorCategoryTooMany,
			fmt.Sprintf("%d groups match %q", len(result.Entries), wanted))
	}
}

// entryToGroup materializes a transient Group view from a search entry.
func entryToGroup(entry *goldap.Entry) (*Group, error) {
	raw := entry.GetAttributeValue("gidNumber")
	gid, err := strconv.Atoi(raw)
	if err != nil {
		return nil, ldap.NewCategorizedError("resolve_group", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("group %s has non-numeric gidNumber %q", entry.DN, raw))
	}

	return &Group{
		CN:  entry.GetAttributeValue("cn"),
		GID: gid,
		DN:  entry.DN,
	}, nil
}
