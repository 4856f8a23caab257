package scheduler_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/eventmanager"
	"github.com/sarchlab/xsmpcore/scheduler"
	"github.com/sarchlab/xsmpcore/timekeeper"
)

func TestScheduler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Suite")
}

func newHarness() (*scheduler.Scheduler, *timekeeper.Keeper) {
	em := eventmanager.New()
	tk := timekeeper.New(em)
	return scheduler.New(em, tk, nil), tk
}

var _ = Describe("Simulation-time events (spec §8 scenario S3, property 4)", func() {
	It("fires a repeating event exactly repeat+1 times", func() {
		s, tk := newHarness()
		defer s.Close()

		var fireTimes []int64

		ep := eventmanager.NewFuncEntryPoint(func() error {
			fireTimes = append(fireTimes, tk.GetSimulationTime())
			return nil
		})

		_, err := s.AddSimulationTimeEvent(ep, int64(time.Millisecond), int64(time.Millisecond), 1)
		Expect(err).NotTo(HaveOccurred())

		s.RunUntil(int64(10 * time.Millisecond))

		Expect(fireTimes).To(Equal([]int64{int64(time.Millisecond), int64(2 * time.Millisecond)}))
	})

	It("rejects a negative simTime", func() {
		s, _ := newHarness()
		defer s.Close()

		ep := eventmanager.NewFuncEntryPoint(func() error { return nil })
		_, err := s.AddSimulationTimeEvent(ep, -1, 0, 0)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a repeating event with no positive cycle time", func() {
		s, _ := newHarness()
		defer s.Close()

		ep := eventmanager.NewFuncEntryPoint(func() error { return nil })
		_, err := s.AddSimulationTimeEvent(ep, 0, 0, 3)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Equal fire-time ordering (spec §8 property 5)", func() {
	It("breaks ties by insertion order", func() {
		s, _ := newHarness()
		defer s.Close()

		var order []int

		for i := 0; i < 3; i++ {
			i := i
			ep := eventmanager.NewFuncEntryPoint(func() error { order = append(order, i); return nil })
			_, err := s.AddSimulationTimeEvent(ep, int64(time.Millisecond), 0, 0)
			Expect(err).NotTo(HaveOccurred())
		}

		s.RunUntil(int64(time.Millisecond))

		Expect(order).To(Equal([]int{0, 1, 2}))
	})
})

var _ = Describe("GetNextScheduledEventTime / GetCurrentEventId", func() {
	It("reports -1 when no event is queued or executing", func() {
		s, _ := newHarness()
		defer s.Close()

		Expect(s.GetNextScheduledEventTime()).To(Equal(int64(-1)))
		Expect(s.GetCurrentEventId()).To(Equal(int64(-1)))
	})

	It("reports the minimum time across Simulation/Mission/Epoch, excluding Zulu", func() {
		s, tk := newHarness()
		defer s.Close()

		ep := eventmanager.NewFuncEntryPoint(func() error { return nil })
		_, err := s.AddSimulationTimeEvent(ep, int64(5*time.Millisecond), 0, 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = s.AddZuluTimeEvent(ep, tk.GetZuluTime()+int64(time.Millisecond), 0, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.GetNextScheduledEventTime()).To(Equal(int64(5 * time.Millisecond)))
	})

	It("reports the id of the event currently executing", func() {
		s, _ := newHarness()
		defer s.Close()

		var seenDuring int64

		var id int64

		ep := eventmanager.NewFuncEntryPoint(func() error {
			seenDuring = s.GetCurrentEventId()
			return nil
		})
		id, _ = s.AddSimulationTimeEvent(ep, 0, 0, 0)

		s.RunUntil(0)

		Expect(seenDuring).To(Equal(id))
		Expect(s.GetCurrentEventId()).To(Equal(int64(-1)))
	})
})

var _ = Describe("RemoveEvent / SetEventCycleTime / SetEventRepeat", func() {
	It("cancels a queued event", func() {
		s, _ := newHarness()
		defer s.Close()

		fired := false
		ep := eventmanager.NewFuncEntryPoint(func() error { fired = true; return nil })

		id, err := s.AddSimulationTimeEvent(ep, int64(time.Millisecond), 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.RemoveEvent(id)).To(Succeed())

		s.RunUntil(int64(time.Millisecond))
		Expect(fired).To(BeFalse())
	})

	It("rejects removing an unknown id", func() {
		s, _ := newHarness()
		defer s.Close()

		Expect(s.RemoveEvent(999)).To(HaveOccurred())
	})

	It("requires a positive cycle time before a nonzero repeat can be set", func() {
		s, _ := newHarness()
		defer s.Close()

		ep := eventmanager.NewFuncEntryPoint(func() error { return nil })
		id, err := s.AddSimulationTimeEvent(ep, 0, 0, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.SetEventRepeat(id, 2)).To(HaveOccurred())

		Expect(s.SetEventCycleTime(id, int64(time.Millisecond))).To(Succeed())
		Expect(s.SetEventRepeat(id, 2)).To(Succeed())
	})
})

var _ = Describe("Zulu-time events (spec §8 scenario S6)", func() {
	It("fires independently of the simulator's main loop", func() {
		s, tk := newHarness()
		defer s.Close()

		done := make(chan struct{})
		ep := eventmanager.NewFuncEntryPoint(func() error { close(done); return nil })

		_, err := s.AddZuluTimeEvent(ep, tk.GetZuluTime()+int64(5*time.Millisecond), 0, 0)
		Expect(err).NotTo(HaveOccurred())

		Eventually(done, time.Second).Should(BeClosed())
	})

	It("rejects a zuluTime already in the past", func() {
		s, tk := newHarness()
		defer s.Close()

		ep := eventmanager.NewFuncEntryPoint(func() error { return nil })
		_, err := s.AddZuluTimeEvent(ep, tk.GetZuluTime()-1, 0, 0)
		Expect(err).To(HaveOccurred())
	})
})
