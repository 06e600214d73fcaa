package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/mithridate/ldapadm/internal/ldap"
)

// fakeClient implements ldap.Client over an in-memory entry tree with
// honest modify semantics: value-level adds fail on duplicates and
// value-level deletes fail on absent values, exactly as a directory
// server enforces them. That makes the compare-and-swap paths testable
// without a server.
type fakeClient struct {
	entries map[string]map[string][]string
	creds   map[string]string // dn -> password accepted by Bind

	operationLog []string

	// modifyHook, when set, runs before each Modify and can inject a
	// failure (e.g. to simulate a lost allocation race).
	modifyHook func(req *ldap.ModifyRequest) error

	bound  string
	closed bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		entries: make(map[string]map[string][]string),
		creds:   make(map[string]string),
	}
}

// addEntry installs an entry. Attribute value slices are copied.
func (f *fakeClient) addEntry(dn string, attrs map[string][]string) {
	copied := make(map[string][]string, len(attrs))
	for name, values := range attrs {
		copied[name] = append([]string(nil), values...)
	}
	f.entries[dn] = copied
}

func (f *fakeClient) attrValues(dn, name string) []string {
	if attrs, ok := f.entries[dn]; ok {
		return attrs[name]
	}
	return nil
}

func (f *fakeClient) logOp(format string, args ...any) {
	f.operationLog = append(f.operationLog, fmt.Sprintf(format, args...))
}

func (f *fakeClient) countOps(prefix string) int {
	n := 0
	for _, op := range f.operationLog {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func (f *fakeClient) Bind(ctx context.Context, dn, password string) error {
	if expected, ok := f.creds[dn]; ok && expected == password {
		f.bound = dn
		return nil
	}
	return goldap.NewError(goldap.LDAPResultInvalidCredentials, fmt.Errorf("invalid credentials"))
}

func (f *fakeClient) BindWithConfig(ctx context.Context) error {
	return nil
}

func (f *fakeClient) Search(ctx context.Context, req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.logOp("Search: %s %s", req.BaseDN, req.Filter)

	var dns []string
	for dn := range f.entries {
		if !f.inScope(dn, req.BaseDN, req.Scope) {
			continue
		}
		if f.matchFilter(dn, req.Filter) {
			dns = append(dns, dn)
		}
	}
	sort.Strings(dns)

	entries := make([]*goldap.Entry, 0, len(dns))
	for _, dn := range dns {
		entries = append(entries, f.buildEntry(dn))
	}
	return &ldap.SearchResult{Entries: entries}, nil
}

func (f *fakeClient) Add(ctx context.Context, req *ldap.AddRequest) error {
	f.logOp("Add: %s", req.DN)
	if _, exists := f.entries[req.DN]; exists {
		return goldap.NewError(goldap.LDAPResultEntryAlreadyExists, fmt.Errorf("entry exists: %s", req.DN))
	}
	f.addEntry(req.DN, req.Attributes)
	return nil
}

func (f *fakeClient) Modify(ctx context.Context, req *ldap.ModifyRequest) error {
	f.logOp("Modify: %s", req.DN)

	if f.modifyHook != nil {
		if err := f.modifyHook(req); err != nil {
			return err
		}
	}

	attrs, exists := f.entries[req.DN]
	if !exists {
		return goldap.NewError(goldap.LDAPResultNoSuchObject, fmt.Errorf("no such entry: %s", req.DN))
	}

	// Validate every change before applying any: a modify is atomic.
	for _, change := range req.Deletes {
		if len(change.Values) == 0 {
			if _, ok := attrs[change.Name]; !ok {
				return goldap.NewError(goldap.LDAPResultNoSuchAttribute,
					fmt.Errorf("no such attribute %s", change.Name))
			}
			continue
		}
		for _, value := range change.Values {
			if !containsValue(attrs[change.Name], value) {
				return goldap.NewError(goldap.LDAPResultNoSuchAttribute,
					fmt.Errorf("no such value %s=%s", change.Name, value))
			}
		}
	}
	for _, change := range req.Adds {
		for _, value := range change.Values {
			if containsValue(attrs[change.Name], value) {
				return goldap.NewError(goldap.LDAPResultAttributeOrValueExists,
					fmt.Errorf("value exists %s=%s", change.Name, value))
			}
		}
	}

	for _, change := range req.Deletes {
		if len(change.Values) == 0 {
			delete(attrs, change.Name)
			continue
		}
		kept := make([]string, 0, len(attrs[change.Name]))
		for _, existing := range attrs[change.Name] {
			if !containsValue(change.Values, existing) {
				kept = append(kept, existing)
			}
		}
		attrs[change.Name] = kept
	}
	for _, change := range req.Adds {
		attrs[change.Name] = append(attrs[change.Name], change.Values...)
	}
	for _, change := range req.Replaces {
		attrs[change.Name] = append([]string(nil), change.Values...)
	}
	return nil
}

func (f *fakeClient) Delete(ctx context.Context, dn string) error {
	f.logOp("Delete: %s", dn)
	if _, exists := f.entries[dn]; !exists {
		return goldap.NewError(goldap.LDAPResultNoSuchObject, fmt.Errorf("no such entry: %s", dn))
	}
	delete(f.entries, dn)
	return nil
}

func (f *fakeClient) PasswordModify(ctx context.Context, dn, oldPassword, newPassword string) error {
	f.logOp("PasswordModify: %s", dn)
	if _, exists := f.entries[dn]; !exists {
		return goldap.NewError(goldap.LDAPResultNoSuchObject, fmt.Errorf("no such entry: %s", dn))
	}
	f.creds[dn] = newPassword
	return nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	return nil
}

func (f *fakeClient) inScope(dn, baseDN string, scope ldap.SearchScope) bool {
	switch scope {
	case ldap.ScopeBaseObject:
		return dn == baseDN
	case ldap.ScopeSingleLevel:
		suffix := "," + baseDN
		return strings.HasSuffix(dn, suffix) && !strings.Contains(strings.TrimSuffix(dn, suffix), ",")
	default:
		return dn == baseDN || strings.HasSuffix(dn, ","+baseDN)
	}
}

// buildEntry materializes a search entry, synthesizing the memberOf
// overlay from the member attributes of group entries.
func (f *fakeClient) buildEntry(dn string) *goldap.Entry {
	attrs := make(map[string][]string, len(f.entries[dn])+1)
	for name, values := range f.entries[dn] {
		attrs[name] = append([]string(nil), values...)
	}
	var memberOf []string
	for groupDN, groupAttrs := range f.entries {
		if containsValue(groupAttrs["member"], dn) {
			memberOf = append(memberOf, groupDN)
		}
	}
	sort.Strings(memberOf)
	if len(memberOf) > 0 {
		attrs["memberOf"] = memberOf
	}
	return goldap.NewEntry(dn, attrs)
}

// matchFilter evaluates the small filter dialect this package emits:
// presence, equality, and a single-level OR.
func (f *fakeClient) matchFilter(dn, filter string) bool {
	inner := strings.TrimSuffix(strings.TrimPrefix(filter, "("), ")")

	if strings.HasPrefix(inner, "|") {
		for _, sub := range splitFilters(inner[1:]) {
			if f.matchFilter(dn, sub) {
				return true
			}
		}
		return false
	}

	name, value, ok := strings.Cut(inner, "=")
	if !ok {
		return false
	}

	if name == "memberOf" {
		groupAttrs, exists := f.entries[value]
		return exists && containsValue(groupAttrs["member"], dn)
	}

	values := f.attrValues(dn, name)
	if name == "objectClass" && value == "*" {
		return true
	}
	if value == "*" {
		return len(values) > 0
	}
	return containsValue(values, value)
}

// splitFilters splits "(a=1)(b=2)" into its parenthesized components.
func splitFilters(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				parts = append(parts, s[start:i+1])
			}
		}
	}
	return parts
}

func containsValue(values []string, wanted string) bool {
	for _, v := range values {
		if v == wanted {
			return true
		}
	}
	return false
}
