package store

import "strings"

// Action describes one intended state change. Concrete actions are plain
// value types owned by a namespace; Kind returns "<namespace>/<verb>".
type Action interface {
	Kind() string
}

// KindSeparator splits the namespace prefix from the verb in an action kind.
const KindSeparator = "/"

// Kind builds the globally unique kind string for namespace and verb.
func Kind(namespace, verb string) string {
	return namespace + KindSeparator + verb
}

// NamespaceOf returns the namespace prefix of kind, or "" when kind carries
// no separator.
func NamespaceOf(kind string) string {
	namespace, _, ok := strings.Cut(kind, KindSeparator)
	if !ok {
		return ""
	}
	return namespace
}

// Raw is an untyped action. It exists for callers that only know a kind at
// runtime (tests, the CLI, debugging); namespace reducers type-switch over
// their own variants and therefore ignore it.
type Raw struct {
	Type    string
	Payload any
}

// Kind implements Action.
func (r Raw) Kind() string {
	return r.Type
}
