package sequence

// BucketShareNumerator and BucketShareDenominator cap the keyword and temporal
// buckets at 2/5 of the option count each.
const (
	BucketShareNumerator   = 2
	BucketShareDenominator = 5
)

// Allocation is how many options each pool contributes to one question.
type Allocation struct {
	Keyword  int `json:"keyword"`
	Temporal int `json:"temporal"`
	Random   int `json:"random"`
}

// Total returns the planned option count.
func (a Allocation) Total() int {
	return a.Keyword + a.Temporal + a.Random
}

// BucketCap returns round(n * 2/5), rounding halves up.
// For integer n the product never lands on .5 exactly, so the rounding mode
// only matters for documentation.
func BucketCap(n int) int {
	if n <= 0 {
		return 0
	}
	// round-half-up of 2n/5 == floor((4n + 5) / 10), split on n/5 so it cannot overflow
	q, r := n/BucketShareDenominator, n%BucketShareDenominator
	return BucketShareNumerator*q + (2*BucketShareNumerator*r+BucketShareDenominator)/(2*BucketShareDenominator)
}

// BucketSize returns min(round(n * 2/5), available).
func BucketSize(n, available int) int {
	if available < 0 {
		available = 0
	}
	return min(BucketCap(n), available)
}

// Allocate sizes the keyword and temporal buckets from what each pool returned
// and leaves the remainder of n to the random pool. Random is never negative.
func Allocate(n, keywordAvailable, temporalAvailable int) Allocation {
	if n <= 0 {
		return Allocation{}
	}
	k := BucketSize(n, keywordAvailable)
	t := BucketSize(n, temporalAvailable)
	return Allocation{
		Keyword:  k,
		Temporal: t,
		Random:   n - k - t,
	}
}
