// Package coverage builds the second vocabulary arm: it guarantees that
// every distinct key derived from the token set keeps at least some
// representation, even when none of the key's members survive the global
// top-k cut.
package coverage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/feature-prep/vocab-builder/internal/vocab/rank"
)

// KeyFunc derives the grouping key for a token. It must be pure and
// deterministic; it is called once per distinct token.
type KeyFunc func(token string) string

// Build groups the given entries by key and runs the standard ranking rule
// independently within each group. The caller passes only tokens that were
// not selected into the standard arm, so the two arms never overlap.
//
// Groups appear in order of first encounter over the rank-ordered input,
// making the output deterministic; within a group the usual total order
// applies after the per-group filters.
func Build(rest []rank.Entry, keyFn KeyFunc, opts rank.Options) []rank.Entry {
	ordered := make([]rank.Entry, len(rest))
	copy(ordered, rest)
	rank.Sort(ordered)

	keys := make([]string, 0)
	groups := make(map[string][]rank.Entry)
	for _, e := range ordered {
		key := keyFn(e.Token)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], e)
	}

	arm := make([]rank.Entry, 0, len(ordered))
	for _, key := range keys {
		arm = append(arm, rank.Apply(groups[key], opts)...)
	}
	return arm
}

// ParseKeyFunc resolves a key-function spec from configuration. Supported
// forms:
//
//	prefix:<n>      the first n bytes of the token
//	split:<sep>     the token up to the first occurrence of sep
//
// An empty spec returns nil (coverage disabled).
func ParseKeyFunc(spec string) (KeyFunc, error) {
	if spec == "" {
		return nil, nil
	}
	kind, arg, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("invalid coverage key spec %q: expected <kind>:<arg>", spec)
	}
	switch kind {
	case "prefix":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid coverage key spec %q: prefix length must be a positive integer", spec)
		}
		return KeyByPrefix(n), nil
	case "split":
		if arg == "" {
			return nil, fmt.Errorf("invalid coverage key spec %q: separator must not be empty", spec)
		}
		return KeyBySeparator(arg), nil
	default:
		return nil, fmt.Errorf("invalid coverage key spec %q: unknown kind %q", spec, kind)
	}
}

// KeyByPrefix groups tokens by their first n bytes.
func KeyByPrefix(n int) KeyFunc {
	return func(token string) string {
		if len(token) <= n {
			return token
		}
		return token[:n]
	}
}

// KeyBySeparator groups tokens by everything before the first separator.
func KeyBySeparator(sep string) KeyFunc {
	return func(token string) string {
		key, _, _ := strings.Cut(token, sep)
		return key
	}
}
