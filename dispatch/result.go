package dispatch

import (
	"time"

	"heartpredict/ml"
)

const (
	MessageNoDisease = "No heart disease detected."
	MessageDisease   = "Heart disease detected."
)

// Result holds Predictions[model][row] for one successful dispatch.
type Result struct {
	ID          string        `json:"id"`
	Models      []ModelSpec   `json:"models"`
	Predictions [][]int       `json:"predictions"`
	Rows        int           `json:"rows"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Label returns the prediction of model for row.
func (r *Result) Label(model, row int) int {
	return r.Predictions[model][row]
}

// Positives counts rows each model flagged, in model order.
func (r *Result) Positives() []int {
	counts := make([]int, len(r.Predictions))
	for i, labels := range r.Predictions {
		for _, label := range labels {
			if label == ml.LabelDisease {
				counts[i]++
			}
		}
	}
	return counts
}

// Outcome is one model's verdict on one row.
type Outcome struct {
	Model   string `json:"model"`
	Name    string `json:"name"`
	Label   int    `json:"label"`
	Message string `json:"message"`
}

// Outcomes lists every model's verdict on row.
func (r *Result) Outcomes(row int) []Outcome {
	outcomes := make([]Outcome, len(r.Models))
	for i, m := range r.Models {
		label := r.Label(i, row)
		outcomes[i] = Outcome{
			Model:   m.ID,
			Name:    m.Name,
			Label:   label,
			Message: Message(label),
		}
	}
	return outcomes
}

// Message renders a label for people.
func Message(label int) string {
	if label == ml.LabelNoDisease {
		return MessageNoDisease
	}
	return MessageDisease
}
