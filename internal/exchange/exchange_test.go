package exchange_test

import (
	"runtime"
	"sync"
	"weak"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nihilo/internal/exchange"
)

type frame struct {
	sequence uint64
	payload  []uint64
}

func newFrame(seq uint64) *frame {
	f := &frame{sequence: seq, payload: make([]uint64, 64)}
	for i := range f.payload {
		f.payload[i] = seq
	}
	return f
}

var _ = Describe("Cell", func() {
	It("starts with the initial value", func() {
		Expect(exchange.NewCell[frame](nil).Load()).To(BeNil())

		f := newFrame(1)
		Expect(exchange.NewCell(f).Load()).To(BeIdenticalTo(f))
	})

	It("returns the last published value", func() {
		c := exchange.NewCell[frame](nil)
		a, b := newFrame(1), newFrame(2)

		c.Publish(a)
		Expect(c.Load()).To(BeIdenticalTo(a))
		Expect(c.Swap(b)).To(BeIdenticalTo(a))
		Expect(c.Load()).To(BeIdenticalTo(b))
	})

	It("never exposes a torn or older value to concurrent readers", func() {
		c := exchange.NewCell(newFrame(0))
		const published = 20000

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			for seq := uint64(1); seq <= published; seq++ {
				c.Publish(newFrame(seq))
			}
		}()

		for range 4 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				var last uint64
				for last < published {
					f := c.Load()
					Expect(f.sequence).To(BeNumerically(">=", last))
					for _, v := range f.payload {
						if v != f.sequence {
							Fail("payload does not match sequence")
						}
					}
					last = f.sequence
				}
			}()
		}

		wg.Wait()
		Expect(c.Load().sequence).To(Equal(uint64(published)))
	})
})

var _ = Describe("Tracker", func() {
	var tracker *exchange.Tracker[frame]

	BeforeEach(func() {
		tracker = &exchange.Tracker[frame]{}
	})

	It("reports the first value as a change", func() {
		Expect(tracker.Observe(newFrame(1))).To(BeTrue())
	})

	It("ignores nil", func() {
		Expect(tracker.Observe(nil)).To(BeFalse())
	})

	It("reports identity changes only", func() {
		a, b := newFrame(1), newFrame(1)

		Expect(tracker.Observe(a)).To(BeTrue())
		Expect(tracker.Observe(a)).To(BeFalse())
		Expect(tracker.Observe(b)).To(BeTrue())
		Expect(tracker.Observe(a)).To(BeTrue())
	})

	It("reports a change after Reset", func() {
		a := newFrame(1)
		tracker.Observe(a)
		tracker.Reset()
		Expect(tracker.Observe(a)).To(BeTrue())
	})

	It("does not keep superseded values alive", func() {
		c := exchange.NewCell(newFrame(1))
		Expect(tracker.Observe(c.Load())).To(BeTrue())
		old := weak.Make(c.Load())

		c.Publish(newFrame(2))

		Eventually(func() *frame {
			runtime.GC()
			return old.Value()
		}).Should(BeNil())

		Expect(tracker.Observe(c.Load())).To(BeTrue())
		Expect(tracker.Observe(c.Load())).To(BeFalse())
	})
})
