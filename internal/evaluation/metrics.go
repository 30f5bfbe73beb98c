// Package evaluation computes retrieval metrics for match decisions.
package evaluation

import (
	"errors"
	"math"

	"github.com/spigell/hackmatch/internal/keywords"
)

// ErrNoSimilarities is returned when a batch has no finite similarity.
var ErrNoSimilarities = errors.New("no finite similarities")

// Metrics describes how well a hackathon keyword set covers the expanded
// skills of a user. Every value is sanitized and lies in [0, 1].
type Metrics struct {
	Precision        float64 `json:"precision"`
	Recall           float64 `json:"recall"`
	F1               float64 `json:"f1_score"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	Accuracy         float64 `json:"accuracy"`
}

// Classification holds metrics over binary labels.
type Classification struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// Evaluate compares hackathon keywords with expanded skills, treating the
// keywords as predictions and the skills as the relevant set.
func Evaluate(hackathonKeywords, expanded keywords.Set) Metrics {
	tp := hackathonKeywords.Intersect(expanded).Len()
	fp := hackathonKeywords.Difference(expanded).Len()
	fn := expanded.Difference(hackathonKeywords).Len()

	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)

	// Both vectors are binary over the union vocabulary, so the dot product
	// is tp and the norms are the set sizes' square roots.
	var cosine float64
	if k, e := hackathonKeywords.Len(), expanded.Len(); k > 0 && e > 0 {
		cosine = float64(tp) / math.Sqrt(float64(k)*float64(e))
	}

	// This reduces to 2tp/total, which reaches 2 when fp and fn are both 0.
	// The Sanitize clamp below is what keeps a perfect match at 1.
	var accuracy float64
	if total := tp + fp + fn; total > 0 {
		accuracy = float64(tp+(total-(fp+fn))) / float64(total)
	}

	return Metrics{
		Precision:        Sanitize(precision),
		Recall:           Sanitize(recall),
		F1:               Sanitize(f1(precision, recall)),
		CosineSimilarity: Sanitize(cosine),
		Accuracy:         Sanitize(accuracy),
	}
}

// Classify scores predicted labels against true labels. Positions beyond
// the shorter slice are ignored. Undefined ratios are 0.
func Classify(predicted, truth []bool) Classification {
	n := min(len(predicted), len(truth))

	var tp, fp, fn, correct int
	for i := 0; i < n; i++ {
		switch {
		case predicted[i] && truth[i]:
			tp++
		case predicted[i] && !truth[i]:
			fp++
		case !predicted[i] && truth[i]:
			fn++
		}
		if predicted[i] == truth[i] {
			correct++
		}
	}

	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)

	return Classification{
		Accuracy:  Sanitize(ratio(correct, n)),
		Precision: Sanitize(precision),
		Recall:    Sanitize(recall),
		F1:        Sanitize(f1(precision, recall)),
	}
}

// BatchSelfConsistency labels the first half of a batch (by input order) as
// relevant and predicts relevance as similarity above the mean finite
// similarity. The result reflects how similarities are ordered, not whether
// any hackathon is actually relevant, and must not be read as quality.
func BatchSelfConsistency(similarities []float64) (Classification, float64, error) {
	var sum float64
	var finite int
	for _, s := range similarities {
		if isFinite(s) {
			sum += s
			finite++
		}
	}
	if finite == 0 {
		return Classification{}, 0, ErrNoSimilarities
	}
	threshold := sum / float64(finite)

	half := len(similarities) / 2
	truth := make([]bool, len(similarities))
	predicted := make([]bool, len(similarities))
	for i, s := range similarities {
		truth[i] = i < half
		predicted[i] = isFinite(s) && s > threshold
	}

	return Classify(predicted, truth), Sanitize(threshold), nil
}

// Sanitize maps non-finite values to 0, clamps to [0, 1] and rounds to four
// decimal places.
func Sanitize(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*1e4) / 1e4
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
