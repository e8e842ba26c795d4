package bot

import (
	"sync"

	"github.com/codmarsenal/attachments-bot/internal/dto"
)

type draftStep int

const (
	stepMode draftStep = iota
	stepWeapon
	stepName
	stepDescription
	stepImage
)

// draft is the in-progress /submit conversation for one chat. State is
// in-memory only; a restart simply drops unfinished drafts.
type draft struct {
	step    draftStep
	request dto.SubmitRequest
}

type draftStore struct {
	mu     sync.Mutex
	drafts map[int64]*draft
}

func newDraftStore() *draftStore {
	return &draftStore{drafts: make(map[int64]*draft)}
}

func (s *draftStore) start(chatID int64) *draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &draft{step: stepMode}
	s.drafts[chatID] = d
	return d
}

func (s *draftStore) get(chatID int64) *draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[chatID]
}

func (s *draftStore) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, chatID)
}
