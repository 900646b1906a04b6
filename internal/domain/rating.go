package domain

// MaxStars is the highest star value a review can carry.
const MaxStars = 5

// RatingDistribution counts approved reviews per star value.
type RatingDistribution struct {
	One   int `json:"1"`
	Two   int `json:"2"`
	Three int `json:"3"`
	Four  int `json:"4"`
	Five  int `json:"5"`
}

// Total returns the number of reviews in the distribution.
func (d RatingDistribution) Total() int {
	return d.One + d.Two + d.Three + d.Four + d.Five
}

// Histogram is the number of approved reviews per star, index 0 holding
// 1-star reviews.
type Histogram [MaxStars]int

// RatingSummary is the aggregate written back to a business.
type RatingSummary struct {
	Rating       float64            `json:"rating"`
	TotalRatings int                `json:"total_ratings"`
	Distribution RatingDistribution `json:"rating_distribution"`
}

// Summarize computes the rating aggregate of a histogram. The mean is rounded
// half-up to one decimal using integer arithmetic so that boundaries such as
// 4.25 land on 4.3. An empty histogram yields the zero summary.
func Summarize(h Histogram) RatingSummary {
	dist := RatingDistribution{
		One:   h[0],
		Two:   h[1],
		Three: h[2],
		Four:  h[3],
		Five:  h[4],
	}

	n, sum := 0, 0
	for i, c := range h {
		n += c
		sum += (i + 1) * c
	}
	if n == 0 {
		return RatingSummary{Distribution: dist}
	}

	tenths := (20*sum + n) / (2 * n)
	return RatingSummary{
		Rating:       float64(tenths) / 10,
		TotalRatings: n,
		Distribution: dist,
	}
}

// HistogramOf tallies star values. Values outside 1..5 are ignored.
func HistogramOf(ratings ...int) Histogram {
	var h Histogram
	for _, r := range ratings {
		if r >= 1 && r <= MaxStars {
			h[r-1]++
		}
	}
	return h
}
