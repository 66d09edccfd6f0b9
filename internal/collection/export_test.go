package collection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/storage"
)

var _ = Describe("XLSX export", func() {
	It("writes a header row followed by the ledger", func() {
		s := collection.Open(storage.NewMemory(), collection.KindLanguage)
		s.AddGenerated(collection.Card{Kind: collection.KindLanguage, Question: "q", Translation: "t", Answer: "a"})
		_, err := s.AddToCollection()
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(s.Export(&buf, collection.FormatXLSX)).To(Succeed())

		f, err := excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		Expect(f.GetSheetList()).To(Equal([]string{"Language"}))
		rows, err := f.GetRows("Language")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(Equal([][]string{{"Phrase", "Answer"}, {"q", "t\na"}}))
	})
})

var _ = Describe("Anki", func() {
	type call struct {
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}

	var (
		mu     sync.Mutex
		calls  []call
		server *httptest.Server
	)

	BeforeEach(func() {
		calls = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var c call
			if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mu.Lock()
			calls = append(calls, c)
			mu.Unlock()
			if c.Action == "addNote" && bytes.Contains(c.Params, []byte(`"dup"`)) {
				w.Write([]byte(`{"result":null,"error":"cannot create note because it is a duplicate"}`))
				return
			}
			w.Write([]byte(`{"result":1,"error":null}`))
		}))
		DeferCleanup(server.Close)
	})

	It("creates the deck and adds one note per entry, skipping rejected notes", func() {
		anki := collection.NewAnki(server.URL, server.Client(), nil)
		added, err := anki.Push(context.Background(), "Study", []collection.Entry{
			{Phrase: "q1", TranslationAnswer: "a1"},
			{Phrase: "dup", TranslationAnswer: "a2"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal(1))

		mu.Lock()
		defer mu.Unlock()
		Expect(calls).To(HaveLen(3))
		Expect(calls[0].Action).To(Equal("createDeck"))
		Expect(string(calls[1].Params)).To(ContainSubstring(`"modelName":"Basic"`))
		Expect(string(calls[1].Params)).To(ContainSubstring(`"allowDuplicate":false`))
	})

	It("does nothing for an empty ledger", func() {
		anki := collection.NewAnki(server.URL, server.Client(), nil)
		added, err := anki.Push(context.Background(), "Study", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal(0))
		Expect(calls).To(BeEmpty())
	})
})
