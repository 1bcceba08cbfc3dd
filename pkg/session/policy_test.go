package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsInput(t *testing.T) {
	for n := 0; n <= 4; n++ {
		assert.True(t, AcceptsInput(n), "turn %d", n)
	}
	for _, n := range []int{5, 6, 100} {
		assert.False(t, AcceptsInput(n), "turn %d", n)
	}
}

func TestGeneratesReply(t *testing.T) {
	for n := 0; n <= 3; n++ {
		assert.True(t, GeneratesReply(n), "turn %d", n)
	}
	for _, n := range []int{4, 5, 100} {
		assert.False(t, GeneratesReply(n), "turn %d", n)
	}
}

func TestFifthTurnIsAcceptedButNotAnswered(t *testing.T) {
	assert.True(t, AcceptsInput(4))
	assert.False(t, GeneratesReply(4))
}
