package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithridate/ldapadm/internal/ldap"
)

func TestGroupByName(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	group, err := dir.Groups.ByName(context.Background(), "staff")
	require.NoError(t, err)
	assert.Equal(t, "staff", group.CN)
	assert.Equal(t, 200, group.GID)
	assert.Equal(t, staffDN, group.DN)
}

func TestGroupByNameNotFound(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	_, err := dir.Groups.ByName(context.Background(), "nonesuch")
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}

func TestGroupByNameAmbiguous(t *testing.T) {
	f, dir := newDirectoryFixture(t)
	// Two entries with the same cn violate the uniqueness invariant.
	f.addEntry("cn=staff,ou=Sub,ou=Groups,dc=example,dc=org", map[string][]string{
		"cn": {"staff"}, "gidNumber": {"201"},
	})

	_, err := dir.Groups.ByName(context.Background(), "staff")
	require.Error(t, err)
	assert.True(t, ldap.IsTooMany(err))
}

func TestGroupByGID(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	group, err := dir.Groups.ByGID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Domain Guests", group.CN)
}

func TestGroupByDN(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	group, err := dir.Groups.ByDN(context.Background(), staffDN)
	require.NoError(t, err)
	assert.Equal(t, "staff", group.CN)
}

func TestGroupList(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	groups, err := dir.Groups.List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.CN)
	}
	assert.ElementsMatch(t,
		[]string{"Domain Users", "Domain Guests", "Domain Computers", "staff"}, names)
}

func TestGroupMalformedGID(t *testing.T) {
	f, dir := newDirectoryFixture(t)
	f.addEntry("cn=broken,ou=Groups,dc=example,dc=org", map[string][]string{
		"cn": {"broken"}, "gidNumber": {"many"},
	})

	_, err := dir.Groups.ByName(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, ldap.IsMalformed(err))
}

func TestWellKnownGroups(t *testing.T) {
	_, dir := newDirectoryFixture(t)
	ctx := context.Background()

	users, err := dir.Groups.DefaultUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, users.GID)

	guests, err := dir.Groups.Guests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 101, guests.GID)

	computers, err := dir.Groups.Computers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 102, computers.GID)
}

func TestDomainFind(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	domain, err := dir.Domains.Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDomainDN, domain.DN)
	assert.Equal(t, "EXAMPLE", domain.Name)
	assert.Equal(t, testDomainSID, domain.SID)
}

func TestDomainFindMissing(t *testing.T) {
	f := newFakeClient()
	domains := NewDomains(f, testBaseDN)

	_, err := domains.Find(context.Background())
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}

func TestDomainFindAmbiguous(t *testing.T) {
	f, dir := newDirectoryFixture(t)
	f.addEntry("sambaDomainName=OTHER,dc=example,dc=org", map[string][]string{
		"sambaDomainName": {"OTHER"},
		"sambaSID":        {"S-1-5-21-444-555-666"},
	})

	_, err := dir.Domains.Find(context.Background())
	require.Error(t, err)
	assert.True(t, ldap.IsTooMany(err))
}
