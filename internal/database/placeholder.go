package database

import (
	"fmt"
	"strings"
)

// TranslatePlaceholders rewrites $N placeholders into ? for the embedded engine.
// The returned slice holds, for each emitted ?, the 1-based parameter index it
// stands for. Text inside quotes and -- comments is copied untouched.
func TranslatePlaceholders(query string) (string, []int) {
	if !strings.Contains(query, "$") {
		return query, nil
	}

	var b strings.Builder
	b.Grow(len(query))
	var order []int

	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(query, i, c)
			b.WriteString(query[i:end])
			i = end
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query)
			} else {
				end += i
			}
			b.WriteString(query[i:end])
			i = end
		case c == '$' && i+1 < len(query) && isDigit(query[i+1]):
			j := i + 1
			n := 0
			for j < len(query) && isDigit(query[j]) {
				n = n*10 + int(query[j]-'0')
				j++
			}
			b.WriteByte('?')
			order = append(order, n)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), order
}

// skipQuoted returns the index just past the literal opened at start. Doubled
// quote characters are escapes.
func skipQuoted(s string, start int, quote byte) int {
	i := start + 1
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// bindParams lays params out in the order the translated statement expects.
// A repeated index binds the same value again.
func bindParams(order []int, params []any) ([]any, error) {
	if order == nil {
		return params, nil
	}

	bound := make([]any, len(order))
	for i, n := range order {
		if n < 1 || n > len(params) {
			return nil, fmt.Errorf("placeholder $%d has no parameter (%d supplied)", n, len(params))
		}
		bound[i] = params[n-1]
	}
	return bound, nil
}
