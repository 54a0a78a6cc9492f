package fetch

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ScopeAll selects every active employee regardless of department.
const ScopeAll = "all"

// ErrUnknownScope marks a department name that matched nothing. Callers
// map it to an empty result rather than a failure.
var ErrUnknownScope = errors.New("scope does not match any department")

// departmentAliases lists alternate spellings seen in the source for
// departments whose canonical name is ambiguous.
var departmentAliases = map[string][]string{
	"instructional design": {
		"Instructional Design Department",
		"InstructionalDesign",
		"Instructional_Design",
		"ID",
		"ID Department",
	},
	"id": {
		"Instructional Design",
		"Instructional Design Department",
		"ID Department",
	},
}

// resolveDepartment maps a scope name to a department id. Matching is
// exact name first, then known aliases, then a case-insensitive
// contains search; first hit wins.
func resolveDepartment(ctx context.Context, caller Caller, scope string) (int64, error) {
	candidates := []string{scope}
	candidates = append(candidates, departmentAliases[strings.ToLower(strings.TrimSpace(scope))]...)

	for _, name := range candidates {
		ids, err := caller.Search(ctx, ModelDepartment, []any{[]any{"name", "=", name}}, nil)
		if err != nil {
			return 0, errors.Wrapf(err, "department lookup %q", name)
		}
		if len(ids) > 0 {
			return ids[0], nil
		}
	}

	ids, err := caller.Search(ctx, ModelDepartment, []any{[]any{"name", "ilike", scope}}, nil)
	if err != nil {
		return 0, errors.Wrapf(err, "department contains lookup %q", scope)
	}
	if len(ids) > 0 {
		return ids[0], nil
	}
	return 0, errors.Wrap(ErrUnknownScope, scope)
}
