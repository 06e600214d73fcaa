package directory

import (
	"context"
	"fmt"
	"testing"
	"time"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithridate/ldapadm/internal/ldap"
)

const testCounterDN = "sambaDomainName=EXAMPLE,dc=example,dc=org"

func newCounterFixture(t *testing.T) *fakeClient {
	t.Helper()
	f := newFakeClient()
	f.addEntry(testCounterDN, map[string][]string{
		"sambaDomainName": {"EXAMPLE"},
		"sambaSID":        {"S-1-5-21-111-222-333"},
		"uidNumber":       {"1000"},
		"gidNumber":       {"2000"},
		"sambaNextRid":    {"5000"},
	})
	return f
}

func TestAllocateAdvancesCounter(t *testing.T) {
	f := newCounterFixture(t)
	alloc := NewAllocator(f, 0, time.Millisecond)

	value, err := alloc.Allocate(context.Background(), testCounterDN, CounterUID)
	require.NoError(t, err)
	assert.Equal(t, 1001, value)
	assert.Equal(t, []string{"1001"}, f.attrValues(testCounterDN, "uidNumber"))
}

func TestAllocateSequential(t *testing.T) {
	f := newCounterFixture(t)
	alloc := NewAllocator(f, 0, time.Millisecond)

	for want := 2001; want <= 2003; want++ {
		value, err := alloc.Allocate(context.Background(), testCounterDN, CounterGID)
		require.NoError(t, err)
		assert.Equal(t, want, value)
	}
	assert.Equal(t, []string{"2003"}, f.attrValues(testCounterDN, "gidNumber"))
}

func TestAllocateRIDConvention(t *testing.T) {
	// sambaNextRid stores the last issued RID, not the next free one;
	// the issued value and the stored value coincide.
	f := newCounterFixture(t)
	alloc := NewAllocator(f, 0, time.Millisecond)

	rid, err := alloc.Allocate(context.Background(), testCounterDN, CounterRID)
	require.NoError(t, err)
	assert.Equal(t, 5001, rid)
	assert.Equal(t, []string{"5001"}, f.attrValues(testCounterDN, "sambaNextRid"))
}

func TestAllocateLostRaceIsConflict(t *testing.T) {
	f := newCounterFixture(t)
	// The value read as current vanishes before the write lands.
	f.modifyHook = func(req *ldap.ModifyRequest) error {
		return goldap.NewError(goldap.LDAPResultNoSuchAttribute, fmt.Errorf("no such value"))
	}
	alloc := NewAllocator(f, 0, time.Millisecond)

	_, err := alloc.Allocate(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsConflict(err))
}

func TestAllocateMissingEntry(t *testing.T) {
	alloc := NewAllocator(newFakeClient(), 0, time.Millisecond)

	_, err := alloc.Allocate(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}

func TestAllocateMissingAttribute(t *testing.T) {
	f := newFakeClient()
	f.addEntry(testCounterDN, map[string][]string{
		"sambaDomainName": {"EXAMPLE"},
	})
	alloc := NewAllocator(f, 0, time.Millisecond)

	_, err := alloc.Allocate(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}

func TestAllocateNonNumericCounter(t *testing.T) {
	f := newFakeClient()
	f.addEntry(testCounterDN, map[string][]string{
		"uidNumber": {"not-a-number"},
	})
	alloc := NewAllocator(f, 0, time.Millisecond)

	_, err := alloc.Allocate(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsMalformed(err))
}

func TestAllocateWithRetryRecovers(t *testing.T) {
	f := newCounterFixture(t)
	failures := 2
	f.modifyHook = func(req *ldap.ModifyRequest) error {
		if failures > 0 {
			failures--
			return goldap.NewError(goldap.LDAPResultAttributeOrValueExists, fmt.Errorf("value exists"))
		}
		return nil
	}
	alloc := NewAllocator(f, 3, time.Millisecond)

	value, err := alloc.AllocateWithRetry(context.Background(), testCounterDN, CounterUID)
	require.NoError(t, err)
	assert.Equal(t, 1001, value)
	assert.Equal(t, 0, failures)
}

func TestAllocateWithRetryReReadsAfterLostRace(t *testing.T) {
	f := newCounterFixture(t)
	raced := false
	f.modifyHook = func(req *ldap.ModifyRequest) error {
		if raced {
			return nil
		}
		// A competing writer commits its increment first; our write,
		// still holding the stale observed value, loses the swap.
		raced = true
		f.entries[testCounterDN]["uidNumber"] = []string{"1001"}
		return goldap.NewError(goldap.LDAPResultNoSuchAttribute, fmt.Errorf("no such value"))
	}
	alloc := NewAllocator(f, 3, time.Millisecond)

	value, err := alloc.AllocateWithRetry(context.Background(), testCounterDN, CounterUID)
	require.NoError(t, err)

	// The retry must start from a fresh read, never replay the stale
	// value: the winner took 1001, so the loser gets 1002.
	assert.Equal(t, 1002, value)
	assert.Equal(t, []string{"1002"}, f.attrValues(testCounterDN, "uidNumber"))
}

func TestAllocateWithRetryExhausted(t *testing.T) {
	f := newCounterFixture(t)
	f.modifyHook = func(req *ldap.ModifyRequest) error {
		return goldap.NewError(goldap.LDAPResultAttributeOrValueExists, fmt.Errorf("value exists"))
	}
	alloc := NewAllocator(f, 2, time.Millisecond)

	_, err := alloc.AllocateWithRetry(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsConflict(err))
	// Initial attempt plus two retries.
	assert.Equal(t, 3, f.countOps("Modify:"))
}

func TestAllocateWithRetryPropagatesOtherErrors(t *testing.T) {
	alloc := NewAllocator(newFakeClient(), 5, time.Millisecond)

	_, err := alloc.AllocateWithRetry(context.Background(), testCounterDN, CounterUID)
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}
