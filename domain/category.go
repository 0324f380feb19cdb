package domain

type Category struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	IsSystemDefault bool   `json:"is_system_default"`
}

// DefaultCategories is the fixed, system-wide category enumeration.
// Categories are not user-defined data.
var DefaultCategories = []Category{
	{ID: 1, Name: "Groceries", Color: "#4CAF50", IsSystemDefault: true},
	{ID: 2, Name: "Restaurants", Color: "#FF9800", IsSystemDefault: true},
	{ID: 3, Name: "Gas & Fuel", Color: "#795548", IsSystemDefault: true},
	{ID: 4, Name: "Shopping", Color: "#E91E63", IsSystemDefault: true},
	{ID: 5, Name: "Healthcare", Color: "#F44336", IsSystemDefault: true},
	{ID: 6, Name: "Entertainment", Color: "#9C27B0", IsSystemDefault: true},
	{ID: 7, Name: "Transportation", Color: "#3F51B5", IsSystemDefault: true},
	{ID: 8, Name: "Other", Color: "#607D8B", IsSystemDefault: true},
}
