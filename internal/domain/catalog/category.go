package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopbot/backend/internal/domain/shared"
)

const maxCategoryNameLength = 255

// Category is a node in the catalog tree. A nil ParentID marks a root.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
}

// NewCategory validates and builds a category under parentID (nil for a root)
func NewCategory(name string, parentID *int64) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{Name: name, ParentID: parentID}, nil
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.InvalidInput("category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return shared.InvalidInput("category name cannot exceed 255 characters")
	}
	return nil
}

// SplitCategoryPath turns an upstream folder path ("Liquids/Salt") into
// trimmed, non-empty segments.
func SplitCategoryPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CategoryRepository defines persistence for the category tree
type CategoryRepository interface {
	// ListChildren returns direct children of parentID, or the roots when nil
	ListChildren(ctx context.Context, parentID *int64) ([]Category, error)

	GetByID(ctx context.Context, id int64) (*Category, error)

	// Path returns the chain from the root down to id
	Path(ctx context.Context, id int64) ([]Category, error)

	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error

	// EnsurePath creates any missing levels of names, matching by (name, parent),
	// and returns the leaf id. An empty path returns nil.
	EnsurePath(ctx context.Context, names []string) (*int64, error)
}
