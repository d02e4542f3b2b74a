package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFor(t *testing.T) {
	want := []int{10, 8, 6, 4, 2, 1}
	for hints, points := range want {
		assert.Equal(t, points, ScoreFor(hints), "hints=%d", hints)
	}
	assert.Equal(t, 10, ScoreFor(-1))
	assert.Equal(t, 1, ScoreFor(9))
}
