// Package casing converts variable names between case styles.
//
// Word boundaries follow the rules of the JavaScript "no-case" family of
// libraries, so names match the ones JavaScript based CI actions produce.
package casing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode names a case conversion.
type Mode string

const (
	None     Mode = ""
	Lower    Mode = "lower"
	Upper    Mode = "upper"
	Camel    Mode = "camel"
	Constant Mode = "constant"
	Pascal   Mode = "pascal"
	Snake    Mode = "snake"
)

// Func converts a string to a case style.
type Func func(string) string

// modes is ordered; it is the order used when listing available modes.
var modes = []struct {
	mode Mode
	fn   Func
}{
	{Lower, ToLower},
	{Upper, ToUpper},
	{Camel, ToCamel},
	{Constant, ToConstant},
	{Pascal, ToPascal},
	{Snake, ToSnake},
}

// Modes returns the names of all conversions, in a stable order.
func Modes() []string {
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m.mode))
	}
	return names
}

// Lookup returns the conversion for mode.
func Lookup(mode Mode) (Func, bool) {
	for _, m := range modes {
		if m.mode == mode {
			return m.fn, true
		}
	}
	return nil, false
}

// ToLower lowercases the whole string using full Unicode case mapping.
func ToLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ToUpper uppercases the whole string using full Unicode case mapping, so
// "ß" becomes "SS".
func ToUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// ToCamel converts "foo_bar" to "fooBar".
func ToCamel(s string) string {
	return join(s, "", func(word string, i int) string {
		if i == 0 {
			return strings.ToLower(word)
		}
		return capitalize(word, i)
	})
}

// ToPascal converts "foo_bar" to "FooBar".
func ToPascal(s string) string {
	return join(s, "", capitalize)
}

// ToConstant converts "fooBar" to "FOO_BAR".
func ToConstant(s string) string {
	return join(s, "_", func(word string, _ int) string {
		return strings.ToUpper(word)
	})
}

// ToSnake converts "FooBar" to "foo_bar".
func ToSnake(s string) string {
	return join(s, "_", func(word string, _ int) string {
		return strings.ToLower(word)
	})
}

// capitalize uppercases the first byte of word and lowercases the rest.
// Words after the first that start with a digit get a leading underscore
// instead, so "v" "1" "2" stays readable as "v_1_2".
func capitalize(word string, i int) string {
	if word == "" {
		return ""
	}
	first, rest := word[:1], strings.ToLower(word[1:])
	if i > 0 && isDigit(rune(first[0])) {
		return "_" + first + rest
	}
	return strings.ToUpper(first) + rest
}

func join(s, delim string, transform func(word string, i int) string) string {
	ws := Words(s)
	for i, w := range ws {
		ws[i] = transform(w, i)
	}
	return strings.Join(ws, delim)
}

// sep marks a word boundary while splitting.
const sep = '\x00'

// Words splits s into words. A boundary is placed between a lowercase
// letter or digit and a following uppercase letter ("fooBar", "foo2Bar"),
// and before the last capital of an acronym that starts a new word
// ("XMLHttp"). Every run of characters other than ASCII letters and digits
// is a delimiter and is dropped. Words are only ever ASCII letters and
// digits.
func Words(s string) []string {
	rs := []rune(s)

	// lower-or-digit followed by upper: "aB" -> "a|B"
	split := make([]rune, 0, len(rs)+len(rs)/2)
	for i := 0; i < len(rs); {
		if i+1 < len(rs) && (isLower(rs[i]) || isDigit(rs[i])) && isUpper(rs[i+1]) {
			split = append(split, rs[i], sep, rs[i+1])
			i += 2
			continue
		}
		split = append(split, rs[i])
		i++
	}

	// upper followed by upper-then-lower: "ABc" -> "A|Bc"
	rs, split = split, make([]rune, 0, len(split)+len(split)/2)
	for i := 0; i < len(rs); {
		if i+2 < len(rs) && isUpper(rs[i]) && isUpper(rs[i+1]) && isLower(rs[i+2]) {
			split = append(split, rs[i], sep, rs[i+1], rs[i+2])
			i += 3
			continue
		}
		split = append(split, rs[i])
		i++
	}

	var words []string
	var word strings.Builder
	for _, r := range split {
		if isLower(r) || isUpper(r) || isDigit(r) {
			word.WriteRune(r)
			continue
		}
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}
	return words
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
