// Package crud builds admin create/read/update/delete handlers for tables in a fixed registry.
// Table and column names only ever come from the registry; request data is always bound as parameters.
package crud

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/01moynul/cinestream-golang/internal/auth"
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Resource struct {
	// Name is the route segment, e.g. "plans" for /admin/plans.
	Name  string
	Table string
	// Columns are returned by reads. The first one must be "id".
	Columns []string
	// Mutable is the allow-list for create and update bodies.
	Mutable []string
	// Prepare may validate or rewrite the filtered fields before a write.
	Prepare func(fields map[string]any) error
	// WriteRole is the minimum role for create/update/delete. Reads need RoleMod.
	WriteRole auth.Role
	// Catalog marks tables whose writes must invalidate cached catalog reads.
	Catalog bool
}

func (r Resource) validate() error {
	if !identPattern.MatchString(r.Name) || !identPattern.MatchString(r.Table) {
		return fmt.Errorf("crud: bad identifiers in resource %q", r.Name)
	}
	if len(r.Columns) == 0 || r.Columns[0] != "id" {
		return fmt.Errorf("crud: resource %q must list id first", r.Name)
	}
	for _, col := range append(append([]string{}, r.Columns...), r.Mutable...) {
		if !identPattern.MatchString(col) {
			return fmt.Errorf("crud: bad column %q in resource %q", col, r.Name)
		}
	}
	if !r.WriteRole.Valid() {
		return fmt.Errorf("crud: resource %q has no write role", r.Name)
	}
	return nil
}

// Filter keeps only allow-listed fields. Unknown fields are dropped silently.
func (r Resource) Filter(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for _, col := range r.Mutable {
		if v, ok := body[col]; ok {
			out[col] = v
		}
	}
	return out
}

// sortedKeys gives a stable column order so generated statements are deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quote(ident string) string {
	return "`" + ident + "`"
}
