package services

import "testing"

func TestComputeRating(t *testing.T) {
	tests := []struct {
		name        string
		ratings     []int
		wantAverage float64
		wantCount   int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{5}, 5.0, 1},
		{"exact half", []int{4, 5}, 4.5, 2},
		{"rounds down", []int{3, 3, 4}, 3.3, 3},
		{"rounds up", []int{3, 4, 4}, 3.7, 3},
		{"two thirds", []int{5, 5, 4}, 4.7, 3},
		{"all ones", []int{1, 1, 1, 1}, 1.0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			average, count := ComputeRating(tt.ratings)
			if average != tt.wantAverage {
				t.Errorf("ComputeRating(%v) average = %v, want %v", tt.ratings, average, tt.wantAverage)
			}
			if count != tt.wantCount {
				t.Errorf("ComputeRating(%v) count = %v, want %v", tt.ratings, count, tt.wantCount)
			}
		})
	}
}
