package ml

// Info is the human-readable description shown next to a model's results.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pros        string `json:"pros"`
	Cons        string `json:"cons"`
	Accuracy    string `json:"accuracy"`
}

var infos = map[Kind]Info{
	KindDecisionTree: {
		Name:        "Decision Tree",
		Description: "A tree-structured model that reaches a prediction through a sequence of yes/no decisions on the features.",
		Pros:        "Simple, easy to interpret, works well on small datasets.",
		Cons:        "Prone to overfitting.",
		Accuracy:    "~80-85% (depends on training)",
	},
	KindLogisticRegression: {
		Name:        "Logistic Regression",
		Description: "A statistical model that estimates the probability of heart disease.",
		Pros:        "Fast, simple, interpretable, produces probabilities.",
		Cons:        "Assumes a linear decision boundary, less useful on complex data.",
		Accuracy:    "~82-86%",
	},
	KindRandomForest: {
		Name:        "Random Forest",
		Description: "Combines many decision trees into a single robust prediction.",
		Pros:        "High accuracy, less overfitting, handles large datasets well.",
		Cons:        "Harder to interpret, slower to train.",
		Accuracy:    "~85-90%",
	},
	KindSVM: {
		Name:        "Support Vector Machine",
		Description: "Separates the two classes with the widest possible decision boundary.",
		Pros:        "Works well on high-dimensional data.",
		Cons:        "Slow on large datasets, hard to tune.",
		Accuracy:    "~83-88%",
	},
}

// Describe returns the static information for kind.
func Describe(kind Kind) (Info, bool) {
	info, ok := infos[kind]
	return info, ok
}
