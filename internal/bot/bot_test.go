package bot

import (
	"fmt"
	"testing"

	"github.com/codmarsenal/attachments-bot/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestDraftStore(t *testing.T) {
	store := newDraftStore()

	assert.Nil(t, store.get(42))

	d := store.start(42)
	assert.Equal(t, stepMode, d.step)
	assert.Same(t, d, store.get(42))

	// Starting over replaces the draft.
	d2 := store.start(42)
	assert.NotSame(t, d, d2)
	assert.Same(t, d2, store.get(42))

	store.clear(42)
	assert.Nil(t, store.get(42))
}

func TestParseCallbackID(t *testing.T) {
	assert.Equal(t, int64(17), parseCallbackID("ua_approve_17", "ua_approve_"))
	assert.Equal(t, int64(0), parseCallbackID("ua_approve_x", "ua_approve_"))
	assert.Equal(t, int64(0), parseCallbackID("garbage", "ua_approve_"))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{services.ErrQuotaExceeded, "Daily submission limit reached. Try again tomorrow."},
		{services.ErrDuplicatePending, "You already have a pending report on this submission."},
		{services.ErrSystemDisabled, "Submissions are temporarily closed."},
		{fmt.Errorf("%w: name is required", services.ErrValidation), "Name is required"},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), "Not found. Check the ID and try again."},
		{fmt.Errorf("boom"), "Something went wrong, please try again."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, userMessage(tt.err))
	}
}
