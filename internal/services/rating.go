package services

import "math"

// ComputeRating derives the denormalized rating rollup from the full set of
// ratings a user has received. The average is rounded to one decimal place;
// an empty set resets both fields to zero.
func ComputeRating(ratings []int) (average float64, count int) {
	count = len(ratings)
	if count == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	average = math.Round(float64(sum)/float64(count)*10) / 10
	return average, count
}
