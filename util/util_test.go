package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlap(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(5, Overlap(0, 10, 5, 20))
	assert.Equal(10, Overlap(0, 10, -5, 20))
	assert.Equal(0, Overlap(0, 10, 10, 20))
	assert.Equal(0, Overlap(20, 30, 0, 10))
}

func TestClampAndSum(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(127, Clamp(130, 0, 127))
	assert.Equal(0, Clamp(-3, 0, 127))
	assert.Equal(int64(6), Sum([]uint8{1, 2, 3}))
	assert.Equal([]string{"a", "b"}, GetSortedKeys(map[string]int{"b": 1, "a": 2}))
}
