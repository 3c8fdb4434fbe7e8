// internal/hcl/translate.go
package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/ctxlog"
)

// translateLibrary converts a decoded jvm_library block into its
// format-agnostic declaration, evaluating any free-form attributes left in
// the block body into plain Go values.
func (l *Loader) translateLibrary(ctx context.Context, lib *libraryBlock) (*config.LibraryDecl, error) {
	decl := &config.LibraryDecl{
		Name:         lib.Name,
		Targets:      lib.Targets,
		Dependencies: lib.Dependencies,
	}
	if lib.API != nil {
		decl.Exports = lib.API.Exports
	}

	if lib.Settings != nil {
		attrs, diags := lib.Settings.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid settings: %w", diags)
		}
		if len(attrs) > 0 {
			decl.Settings = make(map[string]any, len(attrs))
			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				val, diags := attrs[name].Expr.Value(nil)
				if diags.HasErrors() {
					return nil, fmt.Errorf("evaluating setting %q: %w", name, diags)
				}
				goVal, err := ctyToGo(val)
				if err != nil {
					return nil, fmt.Errorf("setting %q: %w", name, err)
				}
				decl.Settings[name] = goVal
				ctxlog.FromContext(ctx).Debug("Library setting evaluated.", "library", lib.Name, "setting", name)
			}
		}
	}
	return decl, nil
}

// ctyToGo converts an evaluated cty value into a plain Go value: strings,
// bools, int64/float64 numbers, []any, and map[string]any.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()

	switch {
	case ty == cty.String:
		var s string
		if err := gocty.FromCtyValue(val, &s); err != nil {
			return nil, err
		}
		return s, nil
	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(val, &b); err != nil {
			return nil, err
		}
		return b, nil
	case ty == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(val, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, element := it.Element()
			goVal, err := ctyToGo(element)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			key, element := it.Element()
			var name string
			if err := gocty.FromCtyValue(key, &name); err != nil {
				return nil, err
			}
			goVal, err := ctyToGo(element)
			if err != nil {
				return nil, err
			}
			out[name] = goVal
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
