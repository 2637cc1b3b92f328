package entities

// IngredientBucket counts how often one active ingredient was prescribed.
// Variations lists the distinct original inputs in first-seen order.
type IngredientBucket struct {
	ActiveIngredient string   `json:"activeIngredient"`
	Class            string   `json:"class"`
	Count            int      `json:"count"`
	Variations       []string `json:"variations"`
}

// ClassBucket counts prescriptions per therapeutic class.
type ClassBucket struct {
	Class             string   `json:"class"`
	Count             int      `json:"count"`
	ActiveIngredients []string `json:"activeIngredients"`
}

// Report is the result of aggregating a batch of medication names.
// Unidentified keeps duplicates in input order.
type Report struct {
	Total              int                `json:"total"`
	Identified         int                `json:"identified"`
	ByActiveIngredient []IngredientBucket `json:"byActiveIngredient"`
	ByClass            []ClassBucket      `json:"byClass"`
	Unidentified       []string           `json:"unidentified"`
}
