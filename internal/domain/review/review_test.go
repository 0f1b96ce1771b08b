package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	r, err := NewReview("buyer-1", "order-1", "item-1", 5, "  great  ")
	require.NoError(t, err)
	assert.Equal(t, "great", r.Description)
	assert.Len(t, r.ID, 32)
	assert.Empty(t, r.Replies)

	_, err = NewReview("buyer-1", "order-1", "item-1", 0, "")
	assert.Error(t, err)
	_, err = NewReview("buyer-1", "order-1", "item-1", 6, "")
	assert.Error(t, err)
	_, err = NewReview("buyer-1", "", "item-1", 4, "")
	assert.Error(t, err)
	_, err = NewReview("buyer-1", "order-1", "item-1", 4, strings.Repeat("x", 2001))
	assert.Error(t, err)
}

func TestNewReply(t *testing.T) {
	r, err := NewReply("review-1", "seller-1", " thanks ")
	require.NoError(t, err)
	assert.Equal(t, "thanks", r.Content)

	_, err = NewReply("review-1", "seller-1", "   ")
	assert.Error(t, err)
}

func TestReactionType_IsValid(t *testing.T) {
	assert.True(t, ReactionHelpful.IsValid())
	assert.True(t, ReactionUnhelpful.IsValid())
	assert.False(t, ReactionType("love").IsValid())
}
