package intent_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minuteshq/minutes/pkg/intent"
)

var _ = Describe("SessionStore", func() {
	var store *intent.SessionStore

	BeforeEach(func() {
		var err error
		store, err = intent.NewSessionStore(time.Minute)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		store.Close()
	})

	It("remembers the last intent per user", func() {
		store.Remember(1, intent.ParsedIntent{Intent: intent.CategoryActionItems})

		last, ok := store.Last(1)
		Expect(ok).To(BeTrue())
		Expect(last.Intent).To(Equal(intent.CategoryActionItems))
	})

	It("replaces the previous intent", func() {
		store.Remember(1, intent.ParsedIntent{Intent: intent.CategoryActionItems})
		store.Remember(1, intent.ParsedIntent{Intent: intent.CategoryDateSummary})

		last, ok := store.Last(1)
		Expect(ok).To(BeTrue())
		Expect(last.Intent).To(Equal(intent.CategoryDateSummary))
	})

	It("returns nothing for unknown users", func() {
		_, ok := store.Last(99)
		Expect(ok).To(BeFalse())
	})

	It("forgets on demand", func() {
		store.Remember(1, intent.ParsedIntent{Intent: intent.CategoryActionItems})
		store.Forget(1)

		Eventually(func() bool {
			_, ok := store.Last(1)
			return ok
		}).Should(BeFalse())
	})
})
