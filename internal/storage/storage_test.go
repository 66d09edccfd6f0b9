package storage_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/storage"
	"github.com/csheth/studyreader/pkg/logger"
)

var _ = Describe("Store backends", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	DescribeTable("round trips and survives reopen",
		func(backend, file string) {
			path := filepath.Join(dir, file)
			s, err := storage.Open(backend, path)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Set("lastPage_a.pdf", "7")).To(Succeed())
			Expect(s.Batch(map[string]string{
				storage.KeyCollectedFlashcards:      `[{"phrase":"hi","translationAnswer":"lo"}]`,
				storage.KeyFlashcardCollectionCount: "1",
			})).To(Succeed())
			Expect(s.Delete("missing")).To(Succeed())
			Expect(s.Close()).To(Succeed())

			reopened, err := storage.Open(backend, path)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			Expect(storage.GetInt(reopened, storage.LastPageKey("a.pdf"), 1)).To(Equal(7))
			Expect(storage.GetInt(reopened, storage.KeyFlashcardCollectionCount, 0)).To(Equal(1))
			keys, err := reopened.Keys()
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(ConsistOf("collectedFlashcards", "flashcardCollectionCount", "lastPage_a.pdf"))

			Expect(reopened.Delete("lastPage_a.pdf")).To(Succeed())
			_, ok, err := reopened.Get("lastPage_a.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		},
		Entry("json file", config.BackendJSON, "store.json"),
		Entry("sqlite", config.BackendSQLite, "store.db"),
	)

	It("rejects unknown backends", func() {
		_, err := storage.Open("redis", filepath.Join(dir, "x"))
		Expect(err).To(HaveOccurred())
	})

	It("moves a corrupt json file aside and starts empty", func() {
		path := filepath.Join(dir, "broken.json")
		Expect(os.WriteFile(path, []byte("{not json"), 0o644)).To(Succeed())
		var logs bytes.Buffer

		s, err := storage.OpenJSON(path, storage.WithLogger(logger.New(logger.WithOutput(&logs))))
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		Expect(s.Keys()).To(BeEmpty())
		Expect(logs.String()).To(ContainSubstring("WARN: Store " + path))

		aside, err := os.ReadFile(path + ".corrupt")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(aside)).To(Equal("{not json"))

		Expect(s.Set("k", "v")).To(Succeed())
		reopened, err := storage.OpenJSON(path)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()
		Expect(reopened.Keys()).To(Equal([]string{"k"}))
	})
})

var _ = Describe("Typed accessors", func() {
	var s *storage.Memory

	BeforeEach(func() {
		s = storage.NewMemory()
	})

	It("falls back to defaults for absent or malformed values", func() {
		Expect(storage.GetInt(s, "n", 3)).To(Equal(3))
		Expect(s.Set("n", "three")).To(Succeed())
		Expect(storage.GetInt(s, "n", 3)).To(Equal(3))

		Expect(s.Set(storage.ScaleKey("a.pdf"), "NaN-ish")).To(Succeed())
		Expect(storage.GetFloat(s, storage.ScaleKey("a.pdf"), 1.5)).To(Equal(1.5))

		var list []string
		Expect(s.Set("list", "[oops")).To(Succeed())
		Expect(storage.GetJSON(s, "list", &list)).To(BeFalse())
		Expect(list).To(BeNil())
	})

	It("stores floats without losing precision", func() {
		Expect(storage.SetFloat(s, "scale", 1.25)).To(Succeed())
		Expect(storage.GetFloat(s, "scale", 0)).To(Equal(1.25))
	})

	It("names per-file keys after the file", func() {
		Expect(storage.LastPageKey("notes.pdf")).To(Equal("lastPage_notes.pdf"))
		Expect(storage.ScaleKey("notes.pdf")).To(Equal("scale_notes.pdf"))
		Expect(storage.HighlightsKey("notes.pdf")).To(Equal("highlights_notes.pdf"))
	})
})

var _ = Describe("Recent files", func() {
	It("keeps the five most recent, newest first, without duplicates", func() {
		s := storage.NewMemory()
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			_, err := storage.TouchRecent(s, name)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(storage.RecentFiles(s)).To(Equal([]string{"f", "e", "d", "c", "b"}))

		files, err := storage.TouchRecent(s, "c")
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(Equal([]string{"c", "f", "e", "d", "b"}))
	})

	It("treats a malformed list as empty", func() {
		s := storage.NewMemory()
		Expect(s.Set(storage.KeyRecentFiles, "not-json")).To(Succeed())
		Expect(storage.RecentFiles(s)).To(BeEmpty())
	})
})
