package brackets

// BracketSize returns the smallest power of two that fits n entrants.
func BracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

func numRounds(size int) int {
	rounds := 0
	for size > 1 {
		size >>= 1
		rounds++
	}
	return rounds
}

// SeedPositions returns, for every slot of a first round of the given size,
// the 0-based seed that occupies it. Adjacent slots form a pairing and the
// seeds of every pairing sum to size-1, so seed 0 meets the weakest seed and
// the top two seeds can only meet in the final.
func SeedPositions(size int) []int {
	if size <= 0 {
		return []int{}
	}
	positions := []int{0}
	for len(positions) < size {
		count := len(positions) * 2
		next := make([]int, 0, count)
		for _, seed := range positions {
			next = append(next, seed, count-1-seed)
		}
		positions = next
	}
	return positions
}

// FirstRoundPairs groups SeedPositions into first round matchups.
// Seeds >= the number of entrants are byes; they always face a real
// entrant because the weaker seed of a pairing is size-1-stronger.
func FirstRoundPairs(size int) [][2]int {
	positions := SeedPositions(size)
	pairs := make([][2]int, 0, size/2)
	for i := 0; i+1 < len(positions); i += 2 {
		pairs = append(pairs, [2]int{positions[i], positions[i+1]})
	}
	return pairs
}
