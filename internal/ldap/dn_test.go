package ldap

import (
	"testing"
)

func TestEscapeDNValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain value",
			input: "alice",
			want:  "alice",
		},
		{
			name:  "empty value",
			input: "",
			want:  "",
		},
		{
			name:  "comma",
			input: "sales, emea",
			want:  "sales\\, emea",
		},
		{
			name:  "plus and semicolon",
			input: "a+b;c",
			want:  "a\\+b\\;c",
		},
		{
			name:  "quotes and backslash",
			input: `say "hi" \now`,
			want:  `say \"hi\" \\now`,
		},
		{
			name:  "angle brackets",
			input: "<tag>",
			want:  "\\<tag\\>",
		},
		{
			name:  "leading hash",
			input: "#comment",
			want:  "\\#comment",
		},
		{
			name:  "interior hash untouched",
			input: "c#sharp",
			want:  "c#sharp",
		},
		{
			name:  "leading space",
			input: " padded",
			want:  "\\ padded",
		},
		{
			name:  "trailing space",
			input: "padded ",
			want:  "padded\\ ",
		},
		{
			name:  "interior space untouched",
			input: "two words",
			want:  "two words",
		},
		{
			name:  "nul byte",
			input: "a\x00b",
			want:  "a\\00b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeDNValue(tt.input); got != tt.want {
				t.Errorf("EscapeDNValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNeedsDNEscaping(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"alice", false},
		{"", false},
		{"two words", false},
		{"a,b", true},
		{"a+b", true},
		{` quoted`, true},
		{`trailing `, true},
		{"#lead", true},
		{"c#sharp", false},
		{"back\\slash", true},
	}

	for _, tt := range tests {
		if got := NeedsDNEscaping(tt.input); got != tt.want {
			t.Errorf("NeedsDNEscaping(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidateRDNValue(t *testing.T) {
	if err := ValidateRDNValue("alice"); err != nil {
		t.Errorf("ValidateRDNValue(alice) = %v, want nil", err)
	}

	if err := ValidateRDNValue(""); err == nil {
		t.Error("ValidateRDNValue(\"\") = nil, want error")
	} else if !IsMalformed(err) {
		t.Errorf("ValidateRDNValue(\"\") category = %v, want malformed", GetErrorCategory(err))
	}

	if err := ValidateRDNValue("a\x00b"); err == nil {
		t.Error("ValidateRDNValue(NUL) = nil, want error")
	} else if !IsMalformed(err) {
		t.Errorf("ValidateRDNValue(NUL) category = %v, want malformed", GetErrorCategory(err))
	}
}
