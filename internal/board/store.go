package board

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

// Store is the board state with its actions. It is safe for concurrent use.
type Store struct {
	mutex     sync.Mutex
	state     State
	persister Persister
}

// Open loads the board through persister.
func Open(persister Persister) (*Store, error) {
	state, err := persister.Load()
	if err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}

	return NewStore(state, persister), nil
}

// NewStore wraps an already loaded state. A nil persister keeps the board in
// memory only.
func NewStore(state State, persister Persister) *Store {
	state = state.clone()
	state.normalize()

	return &Store{state: state, persister: persister}
}

// State returns a copy of the current board.
func (s *Store) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.state.clone()
}

// Wallets returns a copy of the wallet list.
func (s *Store) Wallets() []Wallet {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]Wallet(nil), s.state.Wallets...)
}

// Active returns the selected wallet, if any.
func (s *Store) Active() (Entry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state.ActiveIndex == nil {
		return Entry{}, false
	}

	index := *s.state.ActiveIndex

	return Entry{Index: index, Wallet: s.state.Wallets[index]}, true
}

// LoadWallets replaces the wallet list. Comments are kept, and the selection
// is cleared when it falls outside the new list.
func (s *Store) LoadWallets(wallets []Wallet) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state.Wallets = append([]Wallet(nil), wallets...)
	s.state.normalize()

	return s.save()
}

// Select marks the wallet at index as active.
func (s *Store) Select(index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index < 0 || index >= len(s.state.Wallets) {
		return fmt.Errorf("%w: %d (board has %d wallets)", constants.ErrWalletIndexRange, index, len(s.state.Wallets))
	}

	s.state.ActiveIndex = &index

	return s.save()
}

// ClearSelection drops the active wallet.
func (s *Store) ClearSelection() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state.ActiveIndex = nil

	return s.save()
}

// AddComment appends trimmed text to the log for addr, stamped with now in UTC.
func (s *Store) AddComment(addr, text string, now time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, constants.ErrEmptyComment
	}

	comment := Comment{
		Timestamp: now.UTC().Format(constants.CommentTimestampFormat),
		Text:      text,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state.Comments[addr] = append(s.state.Comments[addr], comment)

	return comment, s.save()
}

// RecentComments returns up to limit comments for addr, newest first. A
// limit of zero or less returns the whole log.
func (s *Store) RecentComments(addr string, limit int) []Comment {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	log := s.state.Comments[addr]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}

	recent := make([]Comment, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		recent = append(recent, log[i])
	}

	return recent
}

// DeleteWallet removes the wallet at index. A selection on that wallet is
// cleared and a selection after it moves up by one.
func (s *Store) DeleteWallet(index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if index < 0 || index >= len(s.state.Wallets) {
		return fmt.Errorf("%w: %d (board has %d wallets)", constants.ErrWalletIndexRange, index, len(s.state.Wallets))
	}

	s.state.Wallets = append(s.state.Wallets[:index], s.state.Wallets[index+1:]...)

	if active := s.state.ActiveIndex; active != nil {
		switch {
		case *active == index:
			s.state.ActiveIndex = nil
		case *active > index:
			shifted := *active - 1
			s.state.ActiveIndex = &shifted
		}
	}

	return s.save()
}

// Clear removes every wallet, comment and the selection.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state = State{}
	s.state.normalize()

	return s.save()
}

// Clients returns the distinct client names, sorted.
func (s *Store) Clients() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	seen := make(map[string]struct{}, len(s.state.Wallets))
	clients := make([]string, 0, len(s.state.Wallets))

	for _, wallet := range s.state.Wallets {
		if _, ok := seen[wallet.Client]; ok {
			continue
		}

		seen[wallet.Client] = struct{}{}
		clients = append(clients, wallet.Client)
	}

	sort.Strings(clients)

	return clients
}

// Filter returns the wallets belonging to any of clients, with their board
// positions. An empty filter matches every wallet.
func (s *Store) Filter(clients []string) []Entry {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	allowed := make(map[string]struct{}, len(clients))
	for _, client := range clients {
		allowed[client] = struct{}{}
	}

	entries := make([]Entry, 0, len(s.state.Wallets))

	for index, wallet := range s.state.Wallets {
		if len(allowed) > 0 {
			if _, ok := allowed[wallet.Client]; !ok {
				continue
			}
		}

		entries = append(entries, Entry{Index: index, Wallet: wallet})
	}

	return entries
}

func (s *Store) save() error {
	if s.persister == nil {
		return nil
	}

	err := s.persister.Save(s.state.clone())
	if err != nil {
		return fmt.Errorf("saving board: %w", err)
	}

	return nil
}
