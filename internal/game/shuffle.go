package game

import "slices"

// Shuffle returns a Fisher-Yates permutation of answers and the new position
// of the answer that was at correct. The correct answer is tracked by
// position, so duplicate answer strings are handled. intn must return a
// uniform value in [0, n).
func Shuffle(answers []string, correct int, intn func(n int) int) ([]string, int) {
	out := slices.Clone(answers)
	pos := correct
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
		switch pos {
		case i:
			pos = j
		case j:
			pos = i
		}
	}
	return out, pos
}
