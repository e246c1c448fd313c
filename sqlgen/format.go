// Package sqlgen renders legacy values as PostgreSQL literal tokens and
// assembles them into statements. Quoting happens only in this file.
package sqlgen

import (
	"strings"
)

// Literal is a token ready to embed in a statement: a quoted string, a
// keyword (NULL, TRUE, FALSE) or an expression such as NOW().
type Literal string

const (
	Null          Literal = "NULL"
	True          Literal = "TRUE"
	False         Literal = "FALSE"
	Now           Literal = "NOW()"
	GenRandomUUID Literal = "gen_random_uuid()"
)

// Quote wraps s in single quotes, doubling every embedded quote.
func Quote(s string) Literal {
	return Literal("'" + strings.ReplaceAll(s, "'", "''") + "'")
}

// String formats text. Empty input is NULL.
func String(v string) Literal {
	if v == "" {
		return Null
	}
	return Quote(v)
}

// Number passes numeric text through unchanged. Empty input is NULL.
// The text is not validated; a bad number fails when the script is loaded.
func Number(v string) Literal {
	if v == "" {
		return Null
	}
	return Literal(v)
}

// Bool maps "1" to TRUE and everything else, including empty input, to FALSE.
func Bool(v string) Literal {
	if v == "1" {
		return True
	}
	return False
}

// Date converts YYYY-M-D[-...] to 'YYYY-MM-DD'. Trailing components are ignored.
// Fewer than three components or a non-numeric component yields NULL.
func Date(v string) Literal {
	if v == "" {
		return Null
	}
	parts := strings.Split(v, "-")
	if len(parts) < 3 || !allDigits(parts[:3]) {
		return Null
	}
	return Literal("'" + parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2]) + "'")
}

// Timestamp converts YYYY-M-D-HH.MM.SS to 'YYYY-MM-DD HH:MM:SS'.
// Component widths are not fixed. Fewer than six components or a non-numeric
// component yields NULL.
func Timestamp(v string) Literal {
	if v == "" {
		return Null
	}
	parts := strings.Split(strings.ReplaceAll(v, ".", "-"), "-")
	if len(parts) < 6 || !allDigits(parts[:6]) {
		return Null
	}
	var b strings.Builder
	b.Grow(21)
	b.WriteByte('\'')
	b.WriteString(parts[0])
	b.WriteByte('-')
	b.WriteString(pad2(parts[1]))
	b.WriteByte('-')
	b.WriteString(pad2(parts[2]))
	b.WriteByte(' ')
	b.WriteString(pad2(parts[3]))
	b.WriteByte(':')
	b.WriteString(pad2(parts[4]))
	b.WriteByte(':')
	b.WriteString(pad2(parts[5]))
	b.WriteByte('\'')
	return Literal(b.String())
}

// Enum formats value cast to a PostgreSQL enum type, e.g. 'ACTIVE'::ihss_org.unit_status_enum.
func Enum(value, typeName string) Literal {
	return Literal(string(Quote(value)) + "::" + typeName)
}

// Subquery wraps a scalar SELECT so it can stand in a VALUES list.
func Subquery(query string) Literal {
	return Literal("(" + query + ")")
}

func pad2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return false
			}
		}
	}
	return true
}
