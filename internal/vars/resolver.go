package vars

import (
	"fmt"
	"regexp"
)

// tokenPattern matches ${identifier} references inside a command template.
var tokenPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// UnresolvedVariableError names the first template token with no binding in
// any provenance class.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable ${%s}", e.Name)
}

// Resolve renders a command template against the store. Substitution is
// total: a single unresolved token fails the whole template, there is no
// partial result.
func Resolve(template string, store *Store) (string, error) {
	var unresolved *UnresolvedVariableError
	rendered := tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-1]
		value, ok := store.Lookup(name)
		if !ok {
			if unresolved == nil {
				unresolved = &UnresolvedVariableError{Name: name}
			}
			return token
		}
		return value
	})
	if unresolved != nil {
		return "", unresolved
	}
	return rendered, nil
}
