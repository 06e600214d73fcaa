package directory

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/md4"
	"golang.org/x/text/encoding/unicode"
)

// NTLM digests are an interoperability requirement, not a security
// mechanism: sambaNTPassword and the downstream NTLM authentication
// protocol mandate MD4 over the UTF-16LE password, bit-exact. Do not
// substitute a stronger hash here.

// NTLMHash computes the NT hash of a password and returns it as the
// uppercase hex string stored in sambaNTPassword.
func NTLMHash(password string) (string, error) {
	digest, err := ntHash(password)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(digest)), nil
}

// NTLMv2Hash computes the NTLMv2 key for the given user and domain:
// HMAC-MD5 keyed with the NT hash over the UTF-16LE encoding of the
// uppercased user and domain names. Unused by the provisioning path,
// provided for challenge-response verifiers.
func NTLMv2Hash(password, user, domain string) (string, error) {
	key, err := ntHash(password)
	if err != nil {
		return "", err
	}

	data, err := utf16le(strings.ToUpper(user) + strings.ToUpper(domain))
	if err != nil {
		return "", err
	}

	mac := hmac.New(md5.New, key)
	mac.Write(data)
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil))), nil
}

// ntHash returns the raw 16-byte MD4 digest of the UTF-16LE password.
func ntHash(password string) ([]byte, error) {
	encoded, err := utf16le(password)
	if err != nil {
		return nil, err
	}

	h := md4.New()
	h.Write(encoded)
	return h.Sum(nil), nil
}

// utf16le encodes a string as UTF-16 little-endian without a BOM.
func utf16le(s string) ([]byte, error) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, err := encoder.String(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode password as UTF-16LE: %w", err)
	}
	return []byte(encoded), nil
}
