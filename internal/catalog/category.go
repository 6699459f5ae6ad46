package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Purav2003/epimech-admin/internal/apperr"
)

// Category is a product family. Each has its own collection and image
// key prefix.
type Category string

const (
	Waterpump  Category = "waterpump"
	OtherParts Category = "otherparts"
)

// CategoryInfo describes where a category's data lives.
type CategoryInfo struct {
	Label       string
	Collection  string
	ImagePrefix string
}

var registry = map[Category]CategoryInfo{
	Waterpump:  {Label: "Water Pumps", Collection: "waterpumps", ImagePrefix: ""},
	OtherParts: {Label: "Other Parts", Collection: "otherparts", ImagePrefix: "otherParts/"},
}

// ParseCategory resolves a path or query value, ignoring case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[c]; !ok {
		if s == "" {
			return "", apperr.Validation("category is required")
		}
		return "", apperr.Validation(fmt.Sprintf("unknown category %q", s))
	}
	return c, nil
}

// Info returns the registry entry. Callers must hold a parsed Category.
func (c Category) Info() CategoryInfo { return registry[c] }

func (c Category) String() string { return string(c) }

// Categories lists every registered category in name order.
func Categories() []Category {
	out := make([]Category, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateRegistry checks that collections and image prefixes do not
// collide. Run once at startup.
func ValidateRegistry() error {
	return validate(registry)
}

func validate(reg map[Category]CategoryInfo) error {
	if len(reg) == 0 {
		return errors.New("category registry is empty")
	}
	collections := make(map[string]Category, len(reg))
	prefixes := make(map[string]Category, len(reg))
	var errs []error
	for c, info := range reg {
		if info.Collection == "" {
			errs = append(errs, fmt.Errorf("category %s has no collection", c))
		}
		if other, dup := collections[info.Collection]; dup {
			errs = append(errs, fmt.Errorf("categories %s and %s share collection %q", c, other, info.Collection))
		}
		collections[info.Collection] = c
		if other, dup := prefixes[info.ImagePrefix]; dup {
			errs = append(errs, fmt.Errorf("categories %s and %s share image prefix %q", c, other, info.ImagePrefix))
		}
		prefixes[info.ImagePrefix] = c
	}
	return errors.Join(errs...)
}
