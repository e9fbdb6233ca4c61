// Package normalize limpia y valida los textos que llegan desde el cliente
// (nombres, emails, teléfonos) antes de persistirlos.
package normalize

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// Name recorta, colapsa espacios y capitaliza cada palabra: "  coca   COLA " → "Coca Cola".
func Name(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Und).String(s)
}

// Email recorta y pasa a minúsculas.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail indica si s es una dirección simple (sin nombre visible ni <>).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// ValidPhone acepta 9 a 15 dígitos con '+' inicial opcional.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// LenBetween indica si s tiene entre min y max caracteres (runas, no bytes).
func LenBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// ValidURL acepta URLs absolutas http(s) con host.
func ValidURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
