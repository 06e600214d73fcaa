package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
	"github.com/mithridate/ldapadm/internal/logger"
)

var principalAttributes = []string{"uid", "uidNumber", "gidNumber", "sambaSID"}

// userObjectClasses is part of the Samba/POSIX schema contract; the
// names are bit-exact requirements and must not be changed.
var userObjectClasses = []string{
	"top",
	"person",
	"posixAccount",
	"shadowAccount",
	"sambaSamAccount",
}

// placeholderNTPassword is written by the create step so the entry exists
// in a created-but-unusable state until the real credential lands.
const placeholderNTPassword = "XXX"

// CreateUserRequest describes a user to provision.
type CreateUserRequest struct {
	UID          string   // login name, unique within the user container
	DisplayName  string   // cn
	Surname      string   // sn; defaults to DisplayName when empty
	Password     string   // initial password
	PrimaryGroup string   // group cn; empty means the well-known users group
	ExtraGroups  []string // additional secondary groups by cn
}

// Users provisions and manages user principals. A failed multi-step
// operation leaves the directory in whatever partial state the failing
// step produced: the directory offers no multi-operation transactions,
// so there is no rollback and cleanup is the caller's responsibility.
type Users struct {
	client    ldap.Client
	addr      *Addressing
	groups    *Groups
	members   *Memberships
	alloc     *Allocator
	domains   *Domains
	counterDN string // empty means the domain entry

	// authDial opens a throwaway session for credential checks so the
	// managing session never changes identity.
	authDial func(ctx context.Context) (ldap.Client, error)

	// sessionDN, when non-empty, is the DN this manager's own session is
	// bound as; a password reset for that DN silently re-binds.
	sessionDN string
}

// NewUsers creates a user lifecycle manager.
func NewUsers(client ldap.Client, addr *Addressing, groups *Groups, members *Memberships,
	alloc *Allocator, domains *Domains, counterDN string,
	authDial func(ctx context.Context) (ldap.Client, error)) *Users {
	return &Users{
		client:    client,
		addr:      addr,
		groups:    groups,
		members:   members,
		alloc:     alloc,
		domains:   domains,
		counterDN: counterDN,
		authDial:  authDial,
	}
}

// SetSessionDN records the DN the owning session is bound as, enabling
// silent re-bind after a self password reset.
func (u *Users) SetSessionDN(dn string) {
	u.sessionDN = dn
}

// Create provisions a new user: allocates a uidNumber and a RID, writes
// the entry with a placeholder credential, wires group membership, then
// sets the real password. uid collisions surface as AlreadyExists and
// leave the existing entry untouched (already-advanced counters are not
// rolled back).
func (u *Users) Create(ctx context.Context, req *CreateUserRequest) (*Principal, error) {
	if req.UID == "" {
		return nil, fmt.Errorf("uid is required")
	}
	surname := req.Surname
	if surname == "" {
		surname = req.DisplayName
	}

	primary, err := u.resolvePrimaryGroup(ctx, req.PrimaryGroup)
	if err != nil {
		return nil, err
	}

	domain, err := u.domains.Find(ctx)
	if err != nil {
		return nil, err
	}
	counterDN := u.counterDN
	if counterDN == "" {
		counterDN = domain.DN
	}

	uidNumber, err := u.alloc.AllocateWithRetry(ctx, counterDN, CounterUID)
	if err != nil {
		return nil, err
	}
	rid, err := u.alloc.AllocateWithRetry(ctx, counterDN, CounterRID)
	if err != nil {
		return nil, err
	}
	sid := fmt.Sprintf("%s-%d", domain.SID, rid)

	dn, err := u.addr.UserDN(req.UID)
	if err != nil {
		return nil, err
	}

	addReq := &ldap.AddRequest{
		DN: dn,
		Attributes: map[string][]string{
			"objectClass":     userObjectClasses,
			"uid":             {req.UID},
			"cn":              {req.DisplayName},
			"sn":              {surname},
			"uidNumber":       {strconv.Itoa(uidNumber)},
			"gidNumber":       {strconv.Itoa(primary.GID)},
			"homeDirectory":   {"/home/" + req.UID},
			"loginShell":      {"/bin/bash"},
			"sambaSID":        {sid},
			"sambaNTPassword": {placeholderNTPassword},
		},
	}
	if err := u.client.Add(ctx, addReq); err != nil {
		return nil, ldap.WrapError("create_user", err)
	}

	principal := &Principal{
		UID:       req.UID,
		DN:        dn,
		UIDNumber: uidNumber,
		GIDNumber: primary.GID,
		SID:       sid,
	}

	logger.Info("user entry created",
		"uid", principal.UID,
		"uid_number", principal.UIDNumber,
		"sid", principal.SID,
	)

	if err := u.members.AddMember(ctx, primary, principal); err != nil {
		return nil, err
	}
	for _, name := range req.ExtraGroups {
		group, err := u.groups.ByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := u.members.AddMember(ctx, group, principal); err != nil {
			return nil, err
		}
	}

	if err := u.ResetPassword(ctx, principal, req.Password); err != nil {
		return nil, err
	}

	return principal, nil
}

// CreateGuest provisions a user whose primary group is the well-known
// guest group.
func (u *Users) CreateGuest(ctx context.Context, req *CreateUserRequest) (*Principal, error) {
	guests, err := u.groups.Guests(ctx)
	if err != nil {
		return nil, err
	}
	guestReq := *req
	guestReq.PrimaryGroup = guests.CN
	return u.Create(ctx, &guestReq)
}

// Lookup resolves a user principal by uid.
func (u *Users) Lookup(ctx context.Context, uid string) (*Principal, error) {
	if err := ldap.ValidateRDNValue(uid); err != nil {
		return nil, err
	}

	result, err := u.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     u.addr.UserBase,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     fmt.Sprintf("(uid=%s)", goldap.EscapeFilter(uid)),
		Attributes: principalAttributes,
	})
	if err != nil {
		return nil, ldap.WrapError("lookup_user", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ldap.NewCategorizedError("lookup_user", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("user %q not found", uid))
	case 1:
		return entryToPrincipal(result.Entries[0])
	default:
		return nil, ldap.NewCategorizedError("lookup_user", ldap.ErrorCategoryTooMany,
			fmt.Sprintf("%d users match uid %q", len(result.Entries), uid))
	}
}

// Authenticate checks credentials by binding a throwaway session as the
// user. Wrong password and unknown uid both report false with no error;
// any other directory failure propagates.
func (u *Users) Authenticate(ctx context.Context, uid, password string) (bool, error) {
	principal, err := u.Lookup(ctx, uid)
	if err != nil {
		if ldap.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	session, err := u.authDial(ctx)
	if err != nil {
		return false, err
	}
	defer session.Close()

	if err := session.Bind(ctx, principal.DN, password); err != nil {
		if ldap.IsInvalidCredentials(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResetPassword stores the NTLM digest of the new password and pushes it
// through the directory's native password-change operation. If this
// manager's own session is bound as the target principal, the session is
// silently re-bound with the new credential.
func (u *Users) ResetPassword(ctx context.Context, principal *Principal, newPassword string) error {
	digest, err := NTLMHash(newPassword)
	if err != nil {
		return err
	}

	mod := &ldap.ModifyRequest{DN: principal.DN}
	mod.Replace("sambaNTPassword", digest)
	if err := u.client.Modify(ctx, mod); err != nil {
		return ldap.WrapError("reset_password", err)
	}

	if err := u.client.PasswordModify(ctx, principal.DN, "", newPassword); err != nil {
		return ldap.WrapError("reset_password", err)
	}

	// DNs compare case-insensitively; the configured bind DN and the
	// directory's returned DN may differ in case only.
	if u.sessionDN != "" && strings.EqualFold(u.sessionDN, principal.DN) {
		if err := u.client.Bind(ctx, principal.DN, newPassword); err != nil {
			return ldap.WrapError("rebind_after_reset", err)
		}
	}

	logger.Info("password reset", "uid", principal.UID)
	return nil
}

// Groups returns the principal's primary group and its secondary groups.
func (u *Users) Groups(ctx context.Context, principal *Principal) (*GroupMembership, error) {
	result, err := u.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     principal.DN,
		Scope:      ldap.ScopeBaseObject,
		Filter:     "(objectClass=*)",
		Attributes: []string{"gidNumber", "memberOf"},
	})
	if err != nil {
		return nil, ldap.WrapError("user_groups", err)
	}
	if len(result.Entries) == 0 {
		return nil, ldap.NewCategorizedError("user_groups", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("user entry %s not found", principal.DN))
	}

	entry := result.Entries[0]

	gid, err := strconv.Atoi(entry.GetAttributeValue("gidNumber"))
	if err != nil {
		return nil, ldap.NewCategorizedError("user_groups", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("user %s has non-numeric gidNumber", principal.DN))
	}
	primary, err := u.groups.ByGID(ctx, gid)
	if err != nil {
		return nil, err
	}

	memberOf := entry.GetAttributeValues("memberOf")
	secondary := make([]*Group, 0, len(memberOf))
	for _, groupDN := range memberOf {
		group, err := u.groups.ByDN(ctx, groupDN)
		if err != nil {
			return nil, err
		}
		secondary = append(secondary, group)
	}

	return &GroupMembership{Primary: primary, Secondary: secondary}, nil
}

// Delete removes the user. The principal is detached from every secondary
// group before the entry delete: deleting first would leave dangling
// member references, so the ordering is mandatory.
func (u *Users) Delete(ctx context.Context, principal *Principal) error {
	membership, err := u.Groups(ctx, principal)
	if err != nil {
		return err
	}

	for _, group := range membership.Secondary {
		if err := u.members.RemoveMember(ctx, group, principal); err != nil {
			return err
		}
	}

	if err := u.client.Delete(ctx, principal.DN); err != nil {
		return ldap.WrapError("delete_user", err)
	}

	logger.Info("user deleted", "uid", principal.UID)
	return nil
}

// resolvePrimaryGroup resolves the requested primary group, defaulting to
// the well-known users group.
func (u *Users) resolvePrimaryGroup(ctx context.Context, name string) (*Group, error) {
	if name == "" {
		return u.groups.DefaultUsers(ctx)
	}
	return u.groups.ByName(ctx, name)
}

// entryToPrincipal materializes a transient Principal view from a search
// entry.
func entryToPrincipal(entry *goldap.Entry) (*Principal, error) {
	uidNumber, err := strconv.Atoi(entry.GetAttributeValue("uidNumber"))
	if err != nil {
		return nil, ldap.NewCategorizedError("lookup_user", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("entry %s has non-numeric uidNumber", entry.DN))
	}
	gidNumber, err := strconv.Atoi(entry.GetAttributeValue("gidNumber"))
	if err != nil {
		return nil, ldap.NewCategorizedError("lookup_user", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("entry %s has non-numeric gidNumber", entry.DN))
	}

	return &Principal{
		UID:       entry.GetAttributeValue("uid"),
		DN:        entry.DN,
		UIDNumber: uidNumber,
		GIDNumber: gidNumber,
		SID:       entry.GetAttributeValue("sambaSID"),
	}, nil
}
