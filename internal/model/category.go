package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Category classifies a flash message. Any is a query wildcard and is never
// stored on a message.
type Category int

const (
	Any Category = iota
	Default
	Error
	Warning
	Information
	Success
)

var categoryNames = [...]string{
	Any:         "Any",
	Default:     "Default",
	Error:       "Error",
	Warning:     "Warning",
	Information: "Information",
	Success:     "Success",
}

// Categories lists every concrete (storable) category.
var Categories = []Category{Default, Error, Warning, Information, Success}

func (c Category) String() string {
	if c < Any || int(c) >= len(categoryNames) {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// ParseCategory reads a category token, ignoring case. Short aliases such as
// "info" and "warn" are accepted.
func ParseCategory(s string) (Category, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if strings.ToLower(name) == token {
			return Category(i), nil
		}
	}
	switch token {
	case "info":
		return Information, nil
	case "warn":
		return Warning, nil
	case "danger":
		return Error, nil
	case "":
		return Any, nil
	}
	return Any, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the category name or its ordinal.
func (c *Category) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < int(Any) || n >= len(categoryNames) {
			return fmt.Errorf("category ordinal %d out of range", n)
		}
		*c = Category(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
