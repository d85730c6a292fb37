package score

import "math"

// mutualInformation computes the per-token MI contribution for a 2-cell
// contingency split: n corpus weight, x token weight, y1 positive corpus
// weight, n1 positive token weight.
func mutualInformation(n, x, y1, n1 float64) float64 {
	n0 := x - n1
	y0 := n - y1
	return miTerm(n, x, y1, n1) + miTerm(n, x, y0, n0)
}

// miTerm is one side of the MI sum: (nj/n) * log2(n*nj / (x*yj)). A zero
// co-occurrence weight contributes zero by the x*log(x) -> 0 convention.
func miTerm(n, x, yj, nj float64) float64 {
	if nj <= 0 || yj <= 0 {
		return 0
	}
	return nj / n * math.Log2(n*nj/(x*yj))
}

// expectedMutualInformation computes the expected value of one MI term under
// the hypergeometric independence null: drawing x occurrences out of a corpus
// of n where yj carry the label side in question,
//
//	EMI = sum over nj of P(nj) * (nj/n) * log2(n*nj / (x*yj))
//
// with nj ranging over the hypergeometric support and P the hypergeometric
// pmf. Weights are rounded to the nearest integer; the expectation is only
// defined over integral co-occurrence counts.
func expectedMutualInformation(nf, xf, yf float64) float64 {
	n := int64(math.Round(nf))
	x := int64(math.Round(xf))
	y := int64(math.Round(yf))
	if n <= 0 || x <= 0 || y <= 0 {
		return 0
	}
	coefficient := math.Log2(float64(n)) - math.Log2(float64(xf)) - math.Log2(float64(yf))

	lo := x + y - n
	if lo < 0 {
		lo = 0
	}
	hi := x
	if y < hi {
		hi = y
	}

	var emi float64
	for nj := lo; nj <= hi; nj++ {
		if nj == 0 {
			continue
		}
		p := hypergeometricPMF(n, x, y, nj)
		emi += p * float64(nj) / float64(n) * (coefficient + math.Log2(float64(nj)))
	}
	return emi
}

// hypergeometricPMF returns P(N_j = nj) when drawing x items without
// replacement from n of which y are marked: C(y,nj)*C(n-y,x-nj)/C(n,x).
// Evaluated in log space to stay finite for large corpora.
func hypergeometricPMF(n, x, y, nj int64) float64 {
	logP := logChoose(y, nj) + logChoose(n-y, x-nj) - logChoose(n, x)
	return math.Exp(logP)
}

func logChoose(n, k int64) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	ln1, _ := math.Lgamma(float64(n + 1))
	ln2, _ := math.Lgamma(float64(k + 1))
	ln3, _ := math.Lgamma(float64(n - k + 1))
	return ln1 - ln2 - ln3
}
