// Package collection holds the flashcards a session has generated and the
// durable ledger of cards the user chose to keep.
package collection

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/storage"
)

var (
	ErrConfirmationRequired = errors.New("collection: clearing requires confirmation")
	ErrNotFound             = errors.New("collection: card not found")
)

// Kind separates standard flashcards from language cards; each kind has its
// own ledger.
type Kind string

const (
	KindFlashcard Kind = "flashcard"
	KindLanguage  Kind = "language"
)

// Card is a generated card awaiting review. RequestID names the completion
// request that produced it.
type Card struct {
	ID          string
	RequestID   string
	Kind        Kind
	Question    string
	Answer      string
	Word        string
	Translation string
}

// Entry is one collected card. Entries never change once appended.
type Entry struct {
	Phrase            string `json:"phrase"`
	TranslationAnswer string `json:"translationAnswer"`
}

// Entry converts the card into its ledger form. Language cards pair the
// translation and the answer on two lines.
func (c Card) Entry() Entry {
	if c.Kind == KindLanguage {
		return Entry{Phrase: c.Question, TranslationAnswer: c.Translation + "\n" + c.Answer}
	}
	return Entry{Phrase: c.Question, TranslationAnswer: c.Answer}
}

// CardsFromResponse builds generated cards from a completion response.
// Explanations produce no cards.
func CardsFromResponse(resp llm.Response) []Card {
	var cards []Card
	for _, fc := range resp.Flashcards {
		cards = append(cards, Card{
			ID:        uuid.NewString(),
			RequestID: resp.RequestID,
			Kind:      KindFlashcard,
			Question:  fc.Question,
			Answer:    fc.Answer,
		})
	}
	if lc := resp.Flashcard; lc != nil {
		cards = append(cards, Card{
			ID:          uuid.NewString(),
			RequestID:   resp.RequestID,
			Kind:        KindLanguage,
			Question:    lc.Question,
			Answer:      lc.Answer,
			Word:        lc.Word,
			Translation: lc.Translation,
		})
	}
	return cards
}

func keysFor(kind Kind) (ledgerKey, countKey string) {
	if kind == KindLanguage {
		return storage.KeyCollectedLanguageFlashcards, storage.KeyLanguageCollectionCount
	}
	return storage.KeyCollectedFlashcards, storage.KeyFlashcardCollectionCount
}

// Store is the per-kind card state: the generated cards on display and the
// collected ledger mirrored to durable storage.
type Store struct {
	kind      Kind
	backend   storage.Store
	ledgerKey string
	countKey  string

	generated []Card
	ledger    []Entry
}

// Open loads the ledger for kind. Absent or malformed stored values yield an
// empty ledger; the count always follows the loaded ledger.
func Open(backend storage.Store, kind Kind) *Store {
	ledgerKey, countKey := keysFor(kind)
	s := &Store{kind: kind, backend: backend, ledgerKey: ledgerKey, countKey: countKey}
	var entries []Entry
	if storage.GetJSON(backend, ledgerKey, &entries) {
		s.ledger = entries
	}
	return s
}

func (s *Store) Kind() Kind { return s.kind }

// AddGenerated appends cards to the review list, in display order. Cards of
// another kind are ignored.
func (s *Store) AddGenerated(cards ...Card) int {
	added := 0
	for _, c := range cards {
		if c.Kind != s.kind {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		s.generated = append(s.generated, c)
		added++
	}
	return added
}

func (s *Store) Generated() []Card {
	return append([]Card(nil), s.generated...)
}

// Remove discards a generated card. The ledger is untouched.
func (s *Store) Remove(id string) error {
	for i, c := range s.generated {
		if c.ID == id {
			s.generated = append(s.generated[:i], s.generated[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// AddToCollection moves every generated card into the ledger in display
// order and persists ledger and count together. On a storage failure the
// in-memory state is left as it was.
func (s *Store) AddToCollection() ([]Entry, error) {
	if len(s.generated) == 0 {
		return nil, nil
	}
	added := make([]Entry, 0, len(s.generated))
	for _, c := range s.generated {
		added = append(added, c.Entry())
	}
	next := append(append([]Entry(nil), s.ledger...), added...)
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.ledger = next
	s.generated = nil
	return added, nil
}

// Clear empties the ledger and resets ledger and count together. It refuses
// to run without confirmation.
func (s *Store) Clear(confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.persist([]Entry{}); err != nil {
		return err
	}
	s.ledger = nil
	return nil
}

func (s *Store) Entries() []Entry {
	return append([]Entry(nil), s.ledger...)
}

func (s *Store) Count() int { return len(s.ledger) }

// ExportVisible reports whether an export should be offered.
func (s *Store) ExportVisible() bool { return len(s.ledger) > 0 }

func (s *Store) persist(entries []Entry) error {
	raw, err := storage.EncodeJSON(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	err = s.backend.Batch(map[string]string{
		s.ledgerKey: raw,
		s.countKey:  fmt.Sprint(len(entries)),
	})
	if err != nil {
		return fmt.Errorf("persist %s: %w", s.ledgerKey, err)
	}
	return nil
}
