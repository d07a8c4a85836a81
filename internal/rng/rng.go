package rng

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Shuffle performs an in-place Fisher-Yates shuffle of s using g.
// Every permutation is equally likely when g is uniform.
func Shuffle[T any](g Generator, s []T) {
	for j := len(s) - 1; j > 0; j-- {
		i := g.Intn(j + 1)

		s[i], s[j] = s[j], s[i]
	}
}

// New returns a seeded generator when seed > 0, otherwise a crypto generator
func New(seed int64) Generator {
	if seed > 0 {
		return NewSeeded(seed)
	}

	return Crypto{}
}
