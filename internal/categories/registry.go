// Package categories maintains the expense category registry: a fixed
// built-in set overlaid by user-defined entries.
package categories

import (
	"errors"
	"strings"
	"sync"
)

// FallbackColor is used for orphaned or unknown category names. An expense
// keeping a deleted category still renders, never errors.
const FallbackColor = "#6b7280"

// Category maps a unique, case-sensitive name to a renderable color value.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrProtectedCategory = errors.New("built-in category cannot be removed")
	ErrInvalidCategory   = errors.New("invalid category")
)

// builtins is the permanent category set. Names and colors match the
// dashboard's stock palette.
var builtins = []Category{
	{Name: "Rent", Color: "#ef4444"},
	{Name: "Utilities", Color: "#f59e0b"},
	{Name: "Groceries", Color: "#10b981"},
	{Name: "Transportation", Color: "#3b82f6"},
	{Name: "Investment", Color: "#8b5cf6"},
	{Name: "Eating Out", Color: "#ec4899"},
	{Name: "Donations", Color: "#6366f1"},
}

// BuiltIns returns a copy of the permanent category set.
func BuiltIns() []Category {
	out := make([]Category, len(builtins))
	copy(out, builtins)
	return out
}

// Registry is the merged view of built-in and custom categories. Safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	customs []Category
}

// New builds a registry over the given custom categories. Customs that
// duplicate an earlier custom name are dropped; a custom sharing a built-in
// name is kept and overrides it.
func New(customs []Category) *Registry {
	r := &Registry{}
	seen := make(map[string]struct{}, len(customs))
	for _, c := range customs {
		if c.Name == "" {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		r.customs = append(r.customs, c)
	}
	return r
}

// Merge returns the combined registry: built-ins first in their fixed order
// (with custom colors overriding on name collision), then custom-only
// entries in insertion order.
func (r *Registry) Merge() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overrides := make(map[string]string, len(r.customs))
	for _, c := range r.customs {
		overrides[c.Name] = c.Color
	}

	out := make([]Category, 0, len(builtins)+len(r.customs))
	builtinNames := make(map[string]struct{}, len(builtins))
	for _, b := range builtins {
		builtinNames[b.Name] = struct{}{}
		if color, ok := overrides[b.Name]; ok {
			b.Color = color
		}
		out = append(out, b)
	}
	for _, c := range r.customs {
		if _, isBuiltin := builtinNames[c.Name]; isBuiltin {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Exists reports whether name is present in the merged registry.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exists(name)
}

func (r *Registry) exists(name string) bool {
	for _, b := range builtins {
		if b.Name == name {
			return true
		}
	}
	for _, c := range r.customs {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Add inserts a custom category. The name must not collide with any entry
// of the merged registry, built-in or custom.
func (r *Registry) Add(name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(color) == "" {
		return ErrInvalidCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(name) {
		return ErrDuplicateCategory
	}
	r.customs = append(r.customs, Category{Name: name, Color: color})
	return nil
}

// Remove deletes a custom category. Built-ins are permanent. Transactions
// referencing the removed name are left untouched; they resolve to
// FallbackColor from then on.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range builtins {
		if b.Name == name {
			return ErrProtectedCategory
		}
	}
	for i, c := range r.customs {
		if c.Name == name {
			r.customs = append(r.customs[:i], r.customs[i+1:]...)
			return nil
		}
	}
	return nil
}

// ColorFor resolves a category name to its display color, falling back to
// FallbackColor for orphaned or unknown names.
func (r *Registry) ColorFor(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customs {
		if c.Name == name {
			return c.Color
		}
	}
	for _, b := range builtins {
		if b.Name == name {
			return b.Color
		}
	}
	return FallbackColor
}

// Customs returns a copy of the custom entries for persistence.
func (r *Registry) Customs() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, len(r.customs))
	copy(out, r.customs)
	return out
}
