package nlu

// StructuredDish is one menu entry detected by the NLU service.
// Duplicates are allowed; order follows the service output.
type StructuredDish struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DishPrompt pairs a dish name with a generated text-to-image prompt.
// Alignment with StructuredDish is positional; nothing reconciles the
// two lists by identity.
type DishPrompt struct {
	DishName    string `json:"dish_name"`
	ImagePrompt string `json:"image_prompt"`
}

// Result is the full NLU service response for one menu text.
type Result struct {
	StructuredDishes []StructuredDish `json:"structured_menu_data"`
	Prompts          []DishPrompt     `json:"processed_dishes"`
}
