package directory

import "time"

// Principal is a transient view of a user or machine account, materialized
// fresh from directory state on each query. It is never cached and never
// mutated in place; the directory is the sole source of truth.
type Principal struct {
	UID       string // uid attribute, unique within its container
	DN        string // entry distinguished name
	UIDNumber int    // uidNumber
	GIDNumber int    // gidNumber, the primary group
	SID       string // sambaSID, empty for machine accounts
}

// Group is a transient view of a group entry.
type Group struct {
	CN  string // cn attribute
	GID int    // gidNumber
	DN  string // entry distinguished name
}

// Domain is the singleton sambaDomain entry: read-only from this layer's
// perspective except for the RID counter attribute it carries.
type Domain struct {
	DN   string // entry distinguished name
	Name string // sambaDomainName
	SID  string // sambaSID, the domain security-identifier prefix
}

// GroupMembership is the resolved group view of one principal: the
// primary group (implicit via gidNumber) and the secondary groups
// (explicit via the group member attributes).
type GroupMembership struct {
	Primary   *Group
	Secondary []*Group
}

// WellKnownGroups names the groups the lifecycle layer resolves by
// convention rather than by caller input.
type WellKnownGroups struct {
	Users     string // default primary group for new users
	Guests    string // primary group for guest users
	Computers string // primary group for machine accounts
}

// DefaultWellKnownGroups returns the Samba-conventional group names.
func DefaultWellKnownGroups() WellKnownGroups {
	return WellKnownGroups{
		Users:     "Domain Users",
		Guests:    "Domain Guests",
		Computers: "Domain Computers",
	}
}

// Options configures the domain layer over an open transport session.
type Options struct {
	// BaseDN is the directory suffix searched for the domain entry.
	BaseDN string

	// Container DNs; any left empty defaults to the conventional ou
	// under BaseDN (ou=People, ou=Groups, ou=Computers).
	UserBase     string
	GroupBase    string
	ComputerBase string

	// WellKnown names the conventional groups.
	WellKnown WellKnownGroups

	// CounterDN overrides the entry carrying the uidNumber/gidNumber/
	// sambaNextRid counter attributes. Empty means the domain entry.
	CounterDN string

	// Allocation retry policy for lost counter races.
	AllocateRetries int
	AllocateBackoff time.Duration
}
