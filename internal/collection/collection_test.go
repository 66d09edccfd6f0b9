package collection_test

import (
	"bytes"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/storage"
)

// failingStore refuses every write once broken is set.
type failingStore struct {
	*storage.Memory
	broken bool
}

func (f *failingStore) Batch(values map[string]string) error {
	if f.broken {
		return errors.New("disk full")
	}
	return f.Memory.Batch(values)
}

func (f *failingStore) Delete(key string) error {
	if f.broken {
		return errors.New("disk full")
	}
	return f.Memory.Delete(key)
}

func flashcard(q, a string) collection.Card {
	return collection.Card{Kind: collection.KindFlashcard, Question: q, Answer: a}
}

var _ = Describe("Store", func() {
	var backend *storage.Memory

	BeforeEach(func() {
		backend = storage.NewMemory()
	})

	It("starts empty and hides export", func() {
		s := collection.Open(backend, collection.KindFlashcard)
		Expect(s.Count()).To(Equal(0))
		Expect(s.ExportVisible()).To(BeFalse())
	})

	It("collects generated cards in display order and persists ledger with count", func() {
		s := collection.Open(backend, collection.KindFlashcard)
		Expect(s.AddGenerated(flashcard("q1", "a1"), flashcard("q2", "a2"))).To(Equal(2))

		added, err := s.AddToCollection()
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal([]collection.Entry{
			{Phrase: "q1", TranslationAnswer: "a1"},
			{Phrase: "q2", TranslationAnswer: "a2"},
		}))
		Expect(s.Generated()).To(BeEmpty())
		Expect(s.ExportVisible()).To(BeTrue())
		Expect(storage.GetInt(backend, storage.KeyFlashcardCollectionCount, 0)).To(Equal(2))

		reloaded := collection.Open(backend, collection.KindFlashcard)
		Expect(reloaded.Entries()).To(Equal(s.Entries()))
	})

	It("keeps language cards in their own ledger with a two-line answer", func() {
		lang := collection.Open(backend, collection.KindLanguage)
		std := collection.Open(backend, collection.KindFlashcard)
		lang.AddGenerated(collection.Card{
			Kind:        collection.KindLanguage,
			Question:    "Hamas <b>refused</b> the offer.",
			Translation: "từ chối",
			Answer:      "Declined to accept.",
		}, flashcard("ignored", "wrong kind"))

		_, err := lang.AddToCollection()
		Expect(err).NotTo(HaveOccurred())
		Expect(lang.Entries()).To(Equal([]collection.Entry{
			{Phrase: "Hamas <b>refused</b> the offer.", TranslationAnswer: "từ chối\nDeclined to accept."},
		}))
		Expect(std.Count()).To(Equal(0))
		Expect(storage.GetInt(backend, storage.KeyLanguageCollectionCount, 0)).To(Equal(1))
	})

	It("removes a generated card without touching the ledger", func() {
		s := collection.Open(backend, collection.KindFlashcard)
		s.AddGenerated(flashcard("q1", "a1"), flashcard("q2", "a2"))
		first := s.Generated()[0]

		Expect(s.Remove(first.ID)).To(Succeed())
		Expect(s.Generated()).To(HaveLen(1))
		Expect(s.Remove(first.ID)).To(MatchError(collection.ErrNotFound))
		Expect(s.Count()).To(Equal(0))
	})

	It("requires confirmation to clear and erases the durable copy", func() {
		s := collection.Open(backend, collection.KindFlashcard)
		s.AddGenerated(flashcard("a", "1"), flashcard("b", "2"), flashcard("c", "3"))
		_, err := s.AddToCollection()
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Clear(false)).To(MatchError(collection.ErrConfirmationRequired))
		Expect(s.Count()).To(Equal(3))

		Expect(s.Clear(true)).To(Succeed())
		Expect(s.Count()).To(Equal(0))
		Expect(s.ExportVisible()).To(BeFalse())
		Expect(collection.Open(backend, collection.KindFlashcard).Count()).To(Equal(0))
		Expect(storage.GetInt(backend, storage.KeyFlashcardCollectionCount, -1)).To(Equal(0))
	})

	It("falls back to an empty ledger when the stored value is malformed", func() {
		Expect(backend.Batch(map[string]string{
			storage.KeyCollectedFlashcards:      "{not json",
			storage.KeyFlashcardCollectionCount: "12",
		})).To(Succeed())

		s := collection.Open(backend, collection.KindFlashcard)
		Expect(s.Count()).To(Equal(0))
	})

	It("leaves state untouched when persisting fails", func() {
		s := collection.Open(backend, collection.KindFlashcard)
		s.AddGenerated(flashcard("q", "a"))
		Expect(backend.Close()).To(Succeed())

		_, err := s.AddToCollection()
		Expect(err).To(HaveOccurred())
		Expect(s.Count()).To(Equal(0))
		Expect(s.Generated()).To(HaveLen(1))
	})

	It("keeps ledger and count together when clearing fails", func() {
		failing := &failingStore{Memory: backend}
		s := collection.Open(failing, collection.KindFlashcard)
		s.AddGenerated(flashcard("q", "a"))
		_, err := s.AddToCollection()
		Expect(err).NotTo(HaveOccurred())

		failing.broken = true
		Expect(s.Clear(true)).To(MatchError(ContainSubstring("disk full")))
		Expect(s.Count()).To(Equal(1))

		ledger, ok, err := backend.Get(storage.KeyCollectedFlashcards)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(ledger).NotTo(Equal("[]"))
		Expect(storage.GetInt(backend, storage.KeyFlashcardCollectionCount, 0)).To(Equal(1))
		Expect(collection.Open(backend, collection.KindFlashcard).Count()).To(Equal(1))
	})

	It("survives a file-backed reopen", func() {
		path := filepath.Join(GinkgoT().TempDir(), "store.json")
		fileStore, err := storage.Open(config.BackendJSON, path)
		Expect(err).NotTo(HaveOccurred())
		s := collection.Open(fileStore, collection.KindFlashcard)
		s.AddGenerated(flashcard("hi", "lo"))
		_, err = s.AddToCollection()
		Expect(err).NotTo(HaveOccurred())
		Expect(fileStore.Close()).To(Succeed())

		reopened, err := storage.Open(config.BackendJSON, path)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()
		Expect(collection.Open(reopened, collection.KindFlashcard).Entries()).To(HaveLen(1))
	})
})

var _ = Describe("CardsFromResponse", func() {
	It("tags every card with its request", func() {
		cards := collection.CardsFromResponse(llm.Response{
			RequestID:  "req-1",
			Flashcards: []llm.Flashcard{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}},
		})
		Expect(cards).To(HaveLen(2))
		for _, c := range cards {
			Expect(c.RequestID).To(Equal("req-1"))
			Expect(c.ID).NotTo(BeEmpty())
			Expect(c.Kind).To(Equal(collection.KindFlashcard))
		}
		Expect(cards[0].ID).NotTo(Equal(cards[1].ID))
	})

	It("produces nothing for explanations", func() {
		Expect(collection.CardsFromResponse(llm.Response{Explanation: "text"})).To(BeEmpty())
	})
})

var _ = Describe("CSV export", func() {
	It("writes one quoted pair per line", func() {
		var buf bytes.Buffer
		Expect(collection.WriteCSV(&buf, []collection.Entry{{Phrase: "hi", TranslationAnswer: "lo"}})).To(Succeed())
		Expect(buf.String()).To(Equal("\"hi\";\"lo\"\n"))
	})

	It("keeps embedded newlines and quotes verbatim", func() {
		var buf bytes.Buffer
		entries := []collection.Entry{{Phrase: `say "x"`, TranslationAnswer: "t\na"}}
		Expect(collection.WriteCSV(&buf, entries)).To(Succeed())
		Expect(buf.String()).To(Equal("\"say \"x\"\";\"t\na\"\n"))
	})

	DescribeTable("parses formats",
		func(name, want string, ok bool) {
			got, err := collection.ParseFormat(name)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("csv", "csv", collection.FormatCSV, true),
		Entry("xlsx file", "deck.XLSX", collection.FormatXLSX, true),
		Entry("unknown", "deck.apkg", "", false),
	)

	It("names downloads by kind", func() {
		Expect(collection.FileName(collection.KindFlashcard, "csv")).To(Equal("flashcards.csv"))
		Expect(collection.FileName(collection.KindLanguage, "csv")).To(Equal("language_flashcards.csv"))
	})
})
