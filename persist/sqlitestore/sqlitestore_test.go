package sqlitestore_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/persist"
	"github.com/sarchlab/xsmpcore/persist/sqlitestore"
)

func TestSqlitestore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sqlitestore Suite")
}

var _ = Describe("sqlitestore.Store", func() {
	It("round-trips a persist.Writer stream through a BLOB row", func() {
		store, err := sqlitestore.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		var buf bytes.Buffer
		w := persist.NewWriter(&buf)
		w.WriteString("hello")
		w.WriteUint32(42)
		Expect(w.Err()).NotTo(HaveOccurred())

		id, err := store.Save("run-1", buf.Bytes())
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(BeNumerically(">", 0))

		snap, err := store.Latest("run-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).NotTo(BeNil())

		r := persist.NewReader(snap.Reader())
		Expect(r.ReadString()).To(Equal("hello"))
		Expect(r.ReadUint32()).To(Equal(uint32(42)))
		Expect(r.Err()).NotTo(HaveOccurred())
	})

	It("returns nil with no error when a run has no snapshots", func() {
		store, err := sqlitestore.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		snap, err := store.Latest("missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(snap).To(BeNil())
	})

	It("keeps full history per run, oldest first", func() {
		store, err := sqlitestore.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = store.Save("run-1", []byte("v1"))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Save("run-1", []byte("v2"))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Save("run-2", []byte("other"))
		Expect(err).NotTo(HaveOccurred())

		hist, err := store.History("run-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(hist).To(HaveLen(2))
		Expect(string(hist[0].Data)).To(Equal("v1"))
		Expect(string(hist[1].Data)).To(Equal("v2"))
	})
})
