package vectorstore

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Score computes the similarity of a and b under m. Vectors must have equal length.
// Cosine similarity of a zero vector is 0.
func Score(m Metric, a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if m == Dot {
		return dot
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Candidate is a scored chunk with its insertion sequence, used for ranking.
type Candidate struct {
	Record model.RetrievalRecord
	Seq    int64
}

// Rank sorts candidates by descending score, then ascending insertion
// sequence, and returns at most topK records.
func Rank(cands []Candidate, topK int) []model.RetrievalRecord {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Record.Score != cands[j].Record.Score {
			return cands[i].Record.Score > cands[j].Record.Score
		}
		return cands[i].Seq < cands[j].Seq
	})
	if topK >= 0 && len(cands) > topK {
		cands = cands[:topK]
	}
	out := make([]model.RetrievalRecord, len(cands))
	for i, c := range cands {
		out[i] = c.Record
	}
	return out
}

// CheckDimension enforces the store's dimensionality. When dim holds 0 the
// first caller fixes it to len(vec).
func CheckDimension(dim *atomic.Int64, vec []float32) error {
	got := int64(len(vec))
	if got == 0 {
		return model.DimensionMismatchError{Want: int(dim.Load()), Got: 0}
	}
	if dim.CompareAndSwap(0, got) {
		return nil
	}
	if want := dim.Load(); want != got {
		return model.DimensionMismatchError{Want: int(want), Got: int(got)}
	}
	return nil
}

// CheckQueryDimension validates a query vector against the store dimension.
// An empty store (dim 0) accepts any non-empty vector.
func CheckQueryDimension(dim int, vec []float32) error {
	if len(vec) == 0 || (dim != 0 && len(vec) != dim) {
		return model.DimensionMismatchError{Want: dim, Got: len(vec)}
	}
	return nil
}
