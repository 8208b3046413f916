package safrole

// OutsideIn interleaves a sequence from both ends: output[2k] = input[k],
// output[2k+1] = input[n-1-k]. Spec §4.4, used both for permuting the
// ticket accumulator into γ_s at epoch rotation and for ordering the
// winning-tickets marker.
func OutsideIn[T any](input []T) []T {
	n := len(input)
	out := make([]T, n)
	for i := 0; i < n; i++ {
		k := i / 2
		if i%2 == 0 {
			out[i] = input[k]
		} else {
			out[i] = input[n-1-k]
		}
	}
	return out
}
