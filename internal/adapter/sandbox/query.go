package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadQuery is returned for queries the sandbox dialect cannot parse.
var ErrBadQuery = errors.New("malformed query")

// parsedQuery is the normalized form of a sandbox read query.
type parsedQuery struct {
	objectType string
	criteria   map[string]any
}

// parseQuery parses the sandbox read dialect:
//
//	SELECT * FROM <object> [WHERE <field> = <value> [AND ...]]
//
// Values are single-quoted literals or :name placeholders bound from params.
// The dialect is deliberately tiny, just enough to express the benchmark
// task fixtures that the real platforms express in SOQL/SuiteQL/etc.
func parseQuery(query string, params map[string]any) (*parsedQuery, error) {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) < 4 ||
		!strings.EqualFold(fields[0], "SELECT") ||
		fields[1] != "*" ||
		!strings.EqualFold(fields[2], "FROM") {
		return nil, fmt.Errorf("%w: expected SELECT * FROM <object>", ErrBadQuery)
	}

	q := &parsedQuery{
		objectType: strings.ToLower(fields[3]),
		criteria:   make(map[string]any),
	}
	rest := fields[4:]
	if len(rest) == 0 {
		return q, nil
	}

	if !strings.EqualFold(rest[0], "WHERE") {
		return nil, fmt.Errorf("%w: unexpected token %q", ErrBadQuery, rest[0])
	}
	rest = rest[1:]

	// Conditions come in groups of three (field = value) joined by AND.
	for len(rest) > 0 {
		if len(rest) < 3 || rest[1] != "=" {
			return nil, fmt.Errorf("%w: incomplete condition near %q", ErrBadQuery, strings.Join(rest, " "))
		}
		field := strings.ToLower(rest[0])
		token := rest[2]
		consumed := 3
		// Re-join quoted literals containing spaces ('Acme Corporation').
		for strings.HasPrefix(token, "'") && !strings.HasSuffix(token, "'") {
			if consumed >= len(rest) {
				return nil, fmt.Errorf("%w: unterminated string literal", ErrBadQuery)
			}
			token += " " + rest[consumed]
			consumed++
		}
		value, err := resolveValue(token, params)
		if err != nil {
			return nil, err
		}
		q.criteria[field] = value

		rest = rest[consumed:]
		if len(rest) > 0 {
			if !strings.EqualFold(rest[0], "AND") {
				return nil, fmt.Errorf("%w: expected AND, got %q", ErrBadQuery, rest[0])
			}
			rest = rest[1:]
		}
	}
	return q, nil
}

// resolveValue interprets a condition value token: a quoted literal, a bind
// placeholder, or a bare literal.
func resolveValue(token string, params map[string]any) (any, error) {
	if strings.HasPrefix(token, ":") {
		name := token[1:]
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: unbound parameter %q", ErrBadQuery, name)
		}
		return v, nil
	}
	if len(token) >= 2 && token[0] == '\'' && token[len(token)-1] == '\'' {
		return token[1 : len(token)-1], nil
	}
	return token, nil
}
