package models

// All lists every table owned by the application in creation order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Prompt{},
		&Category{},
		&Tag{},
		&PromptCategory{},
		&PromptTag{},
	}
}

// LinkTables returns the join table bindings for Prompt's many2many fields.
func LinkTables() map[string]interface{} {
	return map[string]interface{}{
		"Categories": &PromptCategory{},
		"Tags":       &PromptTag{},
	}
}
