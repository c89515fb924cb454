// Package evaluation scores ranked result files against relevance judgments
// using precision at fixed cutoffs and recall.
package evaluation

import (
	"fmt"
	"strings"
)

// Cutoffs at which precision is snapshotted. The scan never looks past the
// last one.
const (
	CutoffP5  = 5
	CutoffP10 = 10
	CutoffP25 = 25
	MaxScan   = CutoffP25
)

// Evaluation holds the scores of one ranked result list. A precision whose
// cutoff the list never reached stays 0.
type Evaluation struct {
	P5     float64 `json:"p5"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Recall float64 `json:"recall"`
}

func (e Evaluation) String() string {
	return fmt.Sprintf("P@5: %.4f\nP@10: %.4f\nP@25: %.4f\nRecall: %.4f", e.P5, e.P10, e.P25, e.Recall)
}

// Score evaluates ranked document names against the relevant set.
func Score(relevant map[string]struct{}, ranked []string) Evaluation {
	var (
		eval          Evaluation
		totalFound    int
		relevantFound int
	)
	for _, name := range ranked {
		if totalFound == MaxScan {
			break
		}
		totalFound++
		if _, ok := relevant[name]; ok {
			relevantFound++
		}
		precision := float64(relevantFound) / float64(totalFound)
		switch totalFound {
		case CutoffP5:
			eval.P5 = precision
		case CutoffP10:
			eval.P10 = precision
		case CutoffP25:
			eval.P25 = precision
		}
	}
	if len(relevant) > 0 {
		eval.Recall = float64(relevantFound) / float64(len(relevant))
	}
	return eval
}

// Report collects per-query evaluations in query order.
type Report struct {
	Evaluations []Evaluation `json:"evaluations"`
}

// Average returns the arithmetic mean of every field, or a zero Evaluation
// for an empty report.
func (r *Report) Average() Evaluation {
	var avg Evaluation
	n := len(r.Evaluations)
	if n == 0 {
		return avg
	}
	for _, e := range r.Evaluations {
		avg.P5 += e.P5
		avg.P10 += e.P10
		avg.P25 += e.P25
		avg.Recall += e.Recall
	}
	avg.P5 /= float64(n)
	avg.P10 /= float64(n)
	avg.P25 /= float64(n)
	avg.Recall /= float64(n)
	return avg
}

func (r *Report) String() string {
	var b strings.Builder
	for i, e := range r.Evaluations {
		fmt.Fprintf(&b, "Query: %d\n%s\n-------------------\n", i+1, e)
	}
	fmt.Fprintf(&b, "Final:\n%s\n", r.Average())
	return b.String()
}
