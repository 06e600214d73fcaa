package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithridate/ldapadm/internal/ldap"
)

func TestComputerCreate(t *testing.T) {
	f, dir := newDirectoryFixture(t)

	principal, err := dir.Computers.Create(context.Background(), "ws01", "machine-secret")
	require.NoError(t, err)

	ws01DN := "uid=ws01,ou=Computers,dc=example,dc=org"
	assert.Equal(t, "ws01", principal.UID)
	assert.Equal(t, ws01DN, principal.DN)
	assert.Equal(t, 1001, principal.UIDNumber)
	assert.Equal(t, 102, principal.GIDNumber)
	assert.Empty(t, principal.SID)

	// Machine accounts are devices, not people, and cannot log in.
	assert.Equal(t, []string{"top", "device", "posixAccount", "shadowAccount"},
		f.attrValues(ws01DN, "objectClass"))
	assert.Equal(t, []string{"/nonexistent"}, f.attrValues(ws01DN, "homeDirectory"))
	assert.Equal(t, []string{"/bin/false"}, f.attrValues(ws01DN, "loginShell"))

	// A uid number is consumed, a RID is not.
	assert.Equal(t, []string{"1001"}, f.attrValues(testDomainDN, "uidNumber"))
	assert.Equal(t, []string{"5000"}, f.attrValues(testDomainDN, "sambaNextRid"))

	// The secret is set through the native password operation.
	assert.Equal(t, "machine-secret", f.creds[ws01DN])
}

func TestComputerLookup(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	_, err := dir.Computers.Create(context.Background(), "ws01", "pw")
	require.NoError(t, err)

	found, err := dir.Computers.Lookup(context.Background(), "ws01")
	require.NoError(t, err)
	assert.Equal(t, "ws01", found.UID)

	_, err = dir.Computers.Lookup(context.Background(), "ws99")
	require.Error(t, err)
	assert.True(t, ldap.IsNotFound(err))
}

func TestComputerList(t *testing.T) {
	_, dir := newDirectoryFixture(t)
	ctx := context.Background()

	computers, err := dir.Computers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, computers)

	_, err = dir.Computers.Create(ctx, "ws01", "pw")
	require.NoError(t, err)
	_, err = dir.Computers.Create(ctx, "ws02", "pw")
	require.NoError(t, err)

	computers, err = dir.Computers.List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(computers))
	for _, c := range computers {
		names = append(names, c.UID)
	}
	assert.ElementsMatch(t, []string{"ws01", "ws02"}, names)
}

func TestComputerResetPassword(t *testing.T) {
	f, dir := newDirectoryFixture(t)

	principal, err := dir.Computers.Create(context.Background(), "ws01", "old")
	require.NoError(t, err)

	require.NoError(t, dir.Computers.ResetPassword(context.Background(), principal, "new"))
	assert.Equal(t, "new", f.creds[principal.DN])
}

func TestComputerDelete(t *testing.T) {
	_, dir := newDirectoryFixture(t)

	principal, err := dir.Computers.Create(context.Background(), "ws01", "pw")
	require.NoError(t, err)

	require.NoError(t, dir.Computers.Delete(context.Background(), principal))

	_, err = dir.Computers.Lookup(context.Background(), "ws01")
	assert.True(t, ldap.IsNotFound(err))
}
