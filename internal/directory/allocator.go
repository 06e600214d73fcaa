package directory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mithridate/ldapadm/internal/ldap"
	"github.com/mithridate/ldapadm/internal/logger"
)

// CounterKind names a numeric allocation pool. The constant values are
// the directory attribute names and must not be renamed: they are part
// of the Samba/POSIX schema contract.
type CounterKind string

const (
	CounterUID CounterKind = "uidNumber"
	CounterGID CounterKind = "gidNumber"
	CounterRID CounterKind = "sambaNextRid"
)

// Allocator hands out values from directory-stored counters. Every call
// re-reads the counter from the directory; nothing is cached, so multiple
// processes and replicas cannot drift.
type Allocator struct {
	client     ldap.Client
	maxRetries int
	backoff    time.Duration
}

// NewAllocator creates a counter allocator with the given retry policy
// for lost races. retries <= 0 disables retrying in AllocateWithRetry.
func NewAllocator(client ldap.Client, retries int, backoff time.Duration) *Allocator {
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	return &Allocator{client: client, maxRetries: retries, backoff: backoff}
}

// Allocate reads the counter attribute on counterDN, advances it by one
// with a compare-and-swap modify, and returns the advanced value.
//
// The write deletes the previously-read value and adds the new one in a
// single modify; the directory applies that atomically, so of two
// concurrent allocators exactly one succeeds and the loser observes
// Conflict and must retry from the read.
//
// The returned value is current+1 for every kind. For uidNumber and
// gidNumber the stored value nominally names the next id to issue; for
// sambaNextRid it names the last id issued, so the freshly stored value
// is itself the issued RID. The off-by-one between the two conventions
// is a schema quirk preserved for interoperability; do not normalize it.
func (a *Allocator) Allocate(ctx context.Context, counterDN string, kind CounterKind) (int, error) {
	current, err := a.read(ctx, counterDN, kind)
	if err != nil {
		return 0, err
	}

	next := current + 1

	mod := &ldap.ModifyRequest{DN: counterDN}
	mod.Delete(string(kind), strconv.Itoa(current))
	mod.Add(string(kind), strconv.Itoa(next))

	if err := a.client.Modify(ctx, mod); err != nil {
		// The old value vanished or the new one appeared: another
		// allocator won the race between our read and write.
		switch ldap.GetErrorCategory(err) {
		case ldap.ErrorCategoryConflict, ldap.ErrorCategoryNotFound:
			return 0, ldap.NewCategorizedError("allocate", ldap.ErrorCategoryConflict,
				fmt.Sprintf("counter %s on %s changed during allocation", kind, counterDN))
		}
		return 0, ldap.WrapError("allocate", err)
	}

	return next, nil
}

// AllocateWithRetry wraps Allocate with bounded retry and exponential
// backoff on Conflict. All other failures propagate immediately.
func (a *Allocator) AllocateWithRetry(ctx context.Context, counterDN string, kind CounterKind) (int, error) {
	backoff := a.backoff

	for attempt := 0; ; attempt++ {
		value, err := a.Allocate(ctx, counterDN, kind)
		if err == nil {
			return value, nil
		}
		if !ldap.IsConflict(err) || attempt >= a.maxRetries {
			return 0, err
		}

		logger.Debug("counter allocation lost race, retrying",
			"counter", string(kind),
			"dn", counterDN,
			"attempt", attempt+1,
		)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// read fetches and parses the current counter value.
func (a *Allocator) read(ctx context.Context, counterDN string, kind CounterKind) (int, error) {
	result, err := a.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     counterDN,
		Scope:      ldap.ScopeBaseObject,
		Filter:     "(objectClass=*)",
		Attributes: []string{string(kind)},
	})
	if err != nil {
		return 0, ldap.WrapError("read_counter", err)
	}

	if len(result.Entries) == 0 {
		return 0, ldap.NewCategorizedError("read_counter", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("counter entry %s does not exist", counterDN))
	}

	raw := result.Entries[0].GetAttributeValue(string(kind))
	if raw == "" {
		return 0, ldap.NewCategorizedError("read_counter", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("counter entry %s carries no %s attribute", counterDN, kind))
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ldap.NewCategorizedError("read_counter", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("counter %s on %s is not an integer: %q", kind, counterDN, raw))
	}

	return value, nil
}
