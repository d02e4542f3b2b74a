package service

// scoreTable maps hints used at the moment of solving to points.
var scoreTable = [...]int{10, 8, 6, 4, 2, 1}

// ScoreFor returns the points for a solve after hintsUsed hints. Values
// outside the table are clamped to its ends.
func ScoreFor(hintsUsed int) int {
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	if hintsUsed >= len(scoreTable) {
		hintsUsed = len(scoreTable) - 1
	}
	return scoreTable[hintsUsed]
}
