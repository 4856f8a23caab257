package simulator_test

import (
	"bytes"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/eventmanager"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/simulator"
	"github.com/sarchlab/xsmpcore/types"
)

func TestSimulator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Simulator Suite")
}

// thruster is a minimal fixture Model publishing one int32 state field
// and recording every lifecycle hook call, the shape any concrete Model
// built against this package follows.
type thruster struct {
	*component.Component

	field *publication.Publication

	connectErr error

	published    bool
	configured   bool
	connected    bool
	disconnected bool
}

func newThruster(name string) *thruster {
	t := &thruster{}
	t.Component = component.NewComponent(name, "", t)

	return t
}

func (t *thruster) ComponentBase() *component.Component { return t.Component }

func (t *thruster) DoPublish(pub *publication.Publication) {
	t.published = true
	t.field = pub

	reg := pub.Registry()
	intType, _ := reg.GetPrimitiveType(anysimple.KindInt32)

	_, _ = pub.PublishField("thrust", "", intType.Uuid(), types.ViewAll, true, false, false)
}

func (t *thruster) DoConfigure(logger component.Logger, links component.LinkRegistry) error {
	t.configured = true
	return nil
}

func (t *thruster) DoConnect(sim component.Simulator) error {
	t.connected = true
	return t.connectErr
}

func (t *thruster) DoDisconnect() {
	t.disconnected = true
}

func setThrust(t *thruster, v int32) {
	fld := t.ComponentBase().Publication().Fields()[0]
	_ = fld.SetValue(anysimple.FromInt32(v))
}

func getThrust(t *thruster) int32 {
	fld := t.ComponentBase().Publication().Fields()[0]

	v, _ := fld.GetValue()

	return int32(v.AsInt64())
}

var _ = Describe("Publish/Configure/Connect reaching Standby", func() {
	It("drives a registered Model through its full lifecycle and emits the standard events", func() {
		sim := simulator.New("TestSim", "")

		th := newThruster("thruster1")
		Expect(sim.Add("Models", th)).NotTo(HaveOccurred())

		var seen []string
		for _, name := range []string{"EnterInitialising", "EnterStandby", "EnterExecuting"} {
			name := name
			Expect(sim.EventManager().Subscribe(name, eventmanager.NewFuncEntryPoint(func() error {
				seen = append(seen, name)
				return nil
			}))).NotTo(HaveOccurred())
		}

		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())
		Expect(sim.Connect()).NotTo(HaveOccurred())

		Expect(th.published).To(BeTrue())
		Expect(th.configured).To(BeTrue())
		Expect(th.connected).To(BeTrue())
		Expect(sim.State()).To(Equal(simulator.StateStandby))
		Expect(seen).To(Equal([]string{"EnterInitialising", "EnterStandby"}))
	})

	It("aborts when a child's DoConnect fails", func() {
		sim := simulator.New("TestSim", "")

		th := newThruster("thruster1")
		th.connectErr = errBoom
		Expect(sim.Add("Models", th)).NotTo(HaveOccurred())

		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())

		err := sim.Connect()
		Expect(err).To(HaveOccurred())
		Expect(sim.State()).To(Equal(simulator.StateAborting))
	})
})

var _ = Describe("Run/Hold/Exit", func() {
	It("advances simulation time and returns to Standby", func() {
		sim := simulator.New("TestSim", "")
		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())
		Expect(sim.Connect()).NotTo(HaveOccurred())

		start := sim.TimeKeeper().GetSimulationTime()
		Expect(sim.Run(int64(10 * time.Millisecond))).NotTo(HaveOccurred())

		Expect(sim.State()).To(Equal(simulator.StateStandby))
		Expect(sim.TimeKeeper().GetSimulationTime()).To(BeNumerically(">=", start+int64(10*time.Millisecond)))
	})

	It("Hold cuts a Run short", func() {
		sim := simulator.New("TestSim", "")
		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())
		Expect(sim.Connect()).NotTo(HaveOccurred())

		_, _ = sim.Scheduler().AddSimulationTimeEvent(eventmanager.NewFuncEntryPoint(func() error {
			sim.Hold()
			return nil
		}), int64(time.Millisecond), 0, 0)

		Expect(sim.Run(int64(time.Hour))).NotTo(HaveOccurred())
		Expect(sim.State()).To(Equal(simulator.StateStandby))
		Expect(sim.TimeKeeper().GetSimulationTime()).To(BeNumerically("<", int64(time.Hour)))
	})

	It("Exit reaches the terminal Exiting state from Standby", func() {
		sim := simulator.New("TestSim", "")
		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())
		Expect(sim.Connect()).NotTo(HaveOccurred())

		sim.Exit()
		Expect(sim.State()).To(Equal(simulator.StateExiting))
	})
})

var _ = Describe("Store/Restore", func() {
	It("round-trips a Model's published state against an identical topology", func() {
		sim := simulator.New("TestSim", "")
		th := newThruster("thruster1")
		Expect(sim.Add("Models", th)).NotTo(HaveOccurred())
		Expect(sim.Publish()).NotTo(HaveOccurred())
		Expect(sim.Configure()).NotTo(HaveOccurred())
		Expect(sim.Connect()).NotTo(HaveOccurred())

		setThrust(th, 77)

		var buf bytes.Buffer
		Expect(sim.Store(&buf)).NotTo(HaveOccurred())

		sim2 := simulator.New("TestSim", "")
		th2 := newThruster("thruster1")
		Expect(sim2.Add("Models", th2)).NotTo(HaveOccurred())
		Expect(sim2.Publish()).NotTo(HaveOccurred())
		Expect(sim2.Configure()).NotTo(HaveOccurred())
		Expect(sim2.Connect()).NotTo(HaveOccurred())

		_, err := sim2.Restore(&buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(getThrust(th2)).To(Equal(int32(77)))
	})
})

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
