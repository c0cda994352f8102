// Package scoring reduces per-question verdicts into the final test score.
package scoring

import "gitlab.com/assess-2025.net/internal/domain"

// Score computes the final percentage for a submission. A question
// contributes only when every one of its test cases passed; there is no
// partial credit within a question. The result keeps full float precision,
// no rounding. Callers guarantee at least one question (a test without
// questions is rejected at authoring time).
func Score(results []domain.QuestionResult) float64 {
	correct := 0
	for _, r := range results {
		if r.AllPassed() {
			correct++
		}
	}
	return float64(correct) / float64(len(results)) * 100
}
