package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/go-objectsid"
	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
)

// Domains locates the singleton domain entry beneath the base DN.
type Domains struct {
	client ldap.Client
	baseDN string
}

// NewDomains creates a domain locator.
func NewDomains(client ldap.Client, baseDN string) *Domains {
	return &Domains{client: client, baseDN: baseDN}
}

// Find resolves the domain entry. Exactly one sambaDomain entry must
// exist beneath the base DN: zero is NotFound, several is TooMany (a
// corrupted-state signal, not a retryable condition).
func (d *Domains) Find(ctx context.Context) (*Domain, error) {
	result, err := d.client.Search(ctx, &ldap.SearchRequest{
		BaseDN:     d.baseDN,
		Scope:      ldap.ScopeWholeSubtree,
		Filter:     "(sambaDomainName=*)",
		Attributes: []string{"sambaDomainName", "sambaSID"},
	})
	if err != nil {
		return nil, ldap.WrapError("find_domain", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ldap.NewCategorizedError("find_domain", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("no domain entry found beneath %s", d.baseDN))
	case 1:
	default:
		return nil, ldap.NewCategorizedError("find_domain", ldap.ErrorCategoryTooMany,
			fmt.Sprintf("%d domain entries found beneath %s", len(result.Entries), d.baseDN))
	}

	entry := result.Entries[0]
	sid, err := domainSID(entry)
	if err != nil {
		return nil, err
	}

	return &Domain{
		DN:   entry.DN,
		Name: entry.GetAttributeValue("sambaDomainName"),
		SID:  sid,
	}, nil
}

// domainSID extracts the domain SID. Samba stores sambaSID as a string;
// AD-style directories store binary SIDs, decoded with go-objectsid.
func domainSID(entry *goldap.Entry) (string, error) {
	if value := entry.GetAttributeValue("sambaSID"); strings.HasPrefix(value, "S-") {
		return value, nil
	}

	raw := entry.GetRawAttributeValue("sambaSID")
	if len(raw) == 0 {
		return "", ldap.NewCategorizedError("find_domain", ldap.ErrorCategoryNotFound,
			fmt.Sprintf("domain entry %s carries no sambaSID", entry.DN))
	}
	// A binary SID is at least the 8-byte header plus one subauthority.
	if len(raw) < 12 {
		return "", ldap.NewCategorizedError("find_domain", ldap.ErrorCategoryMalformed,
			fmt.Sprintf("domain entry %s carries an undecodable sambaSID", entry.DN))
	}

	return objectsid.Decode(raw).String(), nil
}
