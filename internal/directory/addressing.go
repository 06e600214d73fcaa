package directory

import (
	"fmt"

	"github.com/mithridate/ldapadm/internal/ldap"
)

// Addressing composes distinguished names for the configured entry
// containers. It performs no directory access: DN construction is pure
// string composition over validated, escaped RDN values.
type Addressing struct {
	UserBase     string // e.g. ou=People,dc=example,dc=org
	GroupBase    string // e.g. ou=Groups,dc=example,dc=org
	ComputerBase string // e.g. ou=Computers,dc=example,dc=org
}

// NewAddressing builds an Addressing over the given base DN, defaulting
// any container left empty to the conventional ou under the base.
func NewAddressing(baseDN, userBase, groupBase, computerBase string) *Addressing {
	if userBase == "" {
		userBase = "ou=People," + baseDN
	}
	if groupBase == "" {
		groupBase = "ou=Groups," + baseDN
	}
	if computerBase == "" {
		computerBase = "ou=Computers," + baseDN
	}
	return &Addressing{
		UserBase:     userBase,
		GroupBase:    groupBase,
		ComputerBase: computerBase,
	}
}

// UserDN returns the DN of the user entry with the given uid.
func (a *Addressing) UserDN(uid string) (string, error) {
	if err := ldap.ValidateRDNValue(uid); err != nil {
		return "", err
	}
	return fmt.Sprintf("uid=%s,%s", ldap.EscapeDNValue(uid), a.UserBase), nil
}

// GroupDN returns the DN of the group entry with the given cn.
func (a *Addressing) GroupDN(cn string) (string, error) {
	if err := ldap.ValidateRDNValue(cn); err != nil {
		return "", err
	}
	return fmt.Sprintf("cn=%s,%s", ldap.EscapeDNValue(cn), a.GroupBase), nil
}

// ComputerDN returns the DN of the machine-account entry with the given
// uid.
func (a *Addressing) ComputerDN(uid string) (string, error) {
	if err := ldap.ValidateRDNValue(uid); err != nil {
		return "", err
	}
	return fmt.Sprintf("uid=%s,%s", ldap.EscapeDNValue(uid), a.ComputerBase), nil
}
