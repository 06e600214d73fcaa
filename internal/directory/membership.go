package directory

import (
	"context"
	"fmt"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
	"github.com/mithridate/ldapadm/internal/logger"
)

// Memberships maintains the dual-attribute group membership encoding:
// memberUid carries flat uid strings, member carries full DNs, and the
// two must describe the same set at every quiescent state. All writes
// therefore edit both attributes inside one modify operation: the
// directory applies a modify atomically, so the encodings cannot
// observably diverge, and the value-level add/delete preconditions double
// as the compare-and-swap discipline against concurrent editors.
type Memberships struct {
	client ldap.Client
	addr   *Addressing
}

// NewMemberships creates a membership manager.
func NewMemberships(client ldap.Client, addr *Addressing) *Memberships {
	return &Memberships{client: client, addr: addr}
}

// AddMember records the principal as a secondary member of the group.
// Adding an existing member, including one added concurrently, is a
// no-op.
func (m *Memberships) AddMember(ctx context.Context, group *Group, principal *Principal) error {
	mod := &ldap.ModifyRequest{DN: group.DN}
	mod.Add("memberUid", principal.UID)
	mod.Add("member", principal.DN)

	if err := m.client.Modify(ctx, mod); err != nil {
		if ldap.IsConflict(err) {
			logger.Debug("member already present",
				"group", group.CN,
				"uid", principal.UID,
			)
			return nil
		}
		return ldap.WrapError("add_member", err)
	}
	return nil
}

// RemoveMember removes the principal from the group's secondary
// membership. Removing an absent member, including one removed
// concurrently, is a no-op.
func (m *Memberships) RemoveMember(ctx context.Context, group *Group, principal *Principal) error {
	mod := &ldap.ModifyRequest{DN: group.DN}
	mod.Delete("memberUid", principal.UID)
	mod.Delete("member", principal.DN)

	if err := m.client.Modify(ctx, mod); err != nil {
		// The value-delete precondition failed: the principal was not
		// a member (or a concurrent remover got there first).
		switch ldap.GetErrorCategory(err) {
		case ldap.ErrorCategoryNotFound, ldap.ErrorCategoryConflict:
			logger.Debug("member already absent",
				"group", group.CN,
				"uid", principal.UID,
			)
			return nil
		}
		return ldap.WrapError("remove_member", err)
	}
	return nil
}

// Members returns the full membership of the group: principals whose
// gidNumber names it as primary group plus the explicit secondary
// members, resolved with a single search over the user container.
func (m *Memberships) Members(ctx context.Context, group *Group) ([]*Principal, error) {
	filter := fmt.Sprintf("(|(gidNumber=%d)(memberOf=%s))",
		group.GID, goldap.EscapeFilter(group.DN))

	result, err := m.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     m.addr.UserBase,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     filter,
		Attributes: principalAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("list_members", err)
	}

	members := make([]*Principal, 0, len(result.Entries))
	for _, entry := range result.Entries {
		principal, err := entryToPrincipal(entry)
		if err != nil {
			return nil, err
		}
		members = append(members, principal)
	}
	return members, nil
}

// SetMembers replaces the group's secondary membership outright,
// regenerating both encodings from the given set in one modify. This is
// the repair path for groups whose attributes have drifted apart.
func (m *Memberships) SetMembers(ctx context.Context, group *Group, principals []*Principal) error {
	mod := &ldap.ModifyRequest{DN: group.DN}

	if len(principals) == 0 {
		mod.Delete("memberUid")
		mod.Delete("member")
	} else {
		uids := make([]string, 0, len(principals))
		dns := make([]string, 0, len(principals))
		for _, p := range principals {
			uids = append(uids, p.UID)
			dns = append(dns, p.DN)
		}
		mod.Replace("memberUid", uids...)
		mod.Replace("member", dns...)
	}

	if err := m.client.Modify(ctx, mod); err != nil {
		// Deleting attributes that are already absent is a no-op.
		if len(principals) == 0 && ldap.IsNotFound(err) {
			return nil
		}
		return ldap.WrapError("set_members", err)
	}
	return nil
}
