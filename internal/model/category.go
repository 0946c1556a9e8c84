// Package model provides data types for allagents.
package model

import (
	"fmt"
	"strings"
)

// Category represents a kind of plugin content.
type Category string

const (
	CategorySkill   Category = "skill"
	CategoryCommand Category = "command"
	CategoryHook    Category = "hook"
	CategoryAgent   Category = "agent"
)

// AllCategories returns all supported content categories in scan order.
func AllCategories() []Category {
	return []Category{CategorySkill, CategoryCommand, CategoryHook, CategoryAgent}
}

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategorySkill, CategoryCommand, CategoryHook, CategoryAgent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// DirName returns the plugin subdirectory holding this category's content.
// The same name is used inside the canonical store and client layouts.
func (c Category) DirName() string {
	switch c {
	case CategorySkill:
		return "skills"
	case CategoryCommand:
		return "commands"
	case CategoryHook:
		return "hooks"
	case CategoryAgent:
		return "agents"
	default:
		return string(c)
	}
}

// ParseCategory converts a string to a Category, accepting both the
// singular form ("skill") and the directory form ("skills").
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	c := Category(strings.TrimSuffix(normalized, "s"))
	if c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (valid: skill, command, hook, agent)", s)
}
