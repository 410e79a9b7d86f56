// symtab.go builds the process-local map of declared functions. The map is
// built once from the parsed declarations, before any translation begins,
// and is read-only during translation.

package ir

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// BuildFnMap maps every function declaration by its source name. A name
// declared twice is a fatal error.
func BuildFnMap(decls []*FnDecl) (map[string]*FnDecl, error) {
	if dup := lo.FindDuplicatesBy(decls, func(d *FnDecl) string { return d.Name }); len(dup) > 0 {
		return nil, errors.Errorf("duplicate declaration, function %q already declared", dup[0].Name)
	}
	return lo.KeyBy(decls, func(d *FnDecl) string { return d.Name }), nil
}
