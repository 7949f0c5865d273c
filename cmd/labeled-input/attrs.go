package main

import (
	"maps"
	"strings"

	lierrors "github.com/vango-dev/labeled-input/internal/errors"
)

// parseAttrs merges name=value flags over base. base is not modified.
func parseAttrs(base map[string]string, flags []string) (map[string]string, error) {
	attrs := maps.Clone(base)
	if attrs == nil {
		attrs = make(map[string]string, len(flags))
	}
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, lierrors.New("E061").
				WithDetail("got " + quote(f)).
				WithSuggestion("Use --attr name=value, for example --attr label=Email")
		}
		attrs[strings.ToLower(name)] = value
	}
	return attrs, nil
}

func quote(s string) string {
	return `"` + s + `"`
}
