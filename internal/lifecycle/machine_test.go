package lifecycle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/lifecycle"
)

func returning(s fmi.Status) lifecycle.Hook {
	return func() fmi.Status { return s }
}

var _ = Describe("Machine", func() {
	var m *lifecycle.Machine

	BeforeEach(func() {
		m = lifecycle.New()
	})

	It("starts instantiated", func() {
		Expect(m.State()).To(Equal(fmi.Instantiated))
	})

	Describe("initialization", func() {
		It("enters initialization mode and passes the hook status through", func() {
			status, err := m.EnterInitializationMode(returning(fmi.Warning))
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(fmi.Warning))
			Expect(m.State()).To(Equal(fmi.InitializationMode))
		})

		It("moves to stepCompleted on exit whatever the hook returns", func() {
			m.EnterInitializationMode(nil)
			status, err := m.ExitInitializationMode(returning(fmi.Discard))
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(fmi.Discard))
			Expect(m.State()).To(Equal(fmi.StepCompleted))
		})

		It("rejects exit before enter without calling the hook", func() {
			called := false
			status, err := m.ExitInitializationMode(func() fmi.Status {
				called = true
				return fmi.OK
			})
			Expect(err).To(MatchError(fmi.ErrIllegalCall))
			Expect(status).To(Equal(fmi.Error))
			Expect(called).To(BeFalse())
			Expect(m.State()).To(Equal(fmi.Instantiated))
		})

		It("rejects entering twice", func() {
			m.EnterInitializationMode(nil)
			_, err := m.EnterInitializationMode(nil)
			Expect(err).To(MatchError(fmi.ErrIllegalCall))
			Expect(m.State()).To(Equal(fmi.InitializationMode))
		})
	})

	Describe("stepping", func() {
		BeforeEach(func() {
			m.EnterInitializationMode(nil)
			m.ExitInitializationMode(nil)
		})

		DescribeTable("maps the hook status to the next state",
			func(s fmi.Status, want fmi.State) {
				status, err := m.Step(returning(s))
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal(s))
				Expect(m.State()).To(Equal(want))
			},
			Entry("ok", fmi.OK, fmi.StepCompleted),
			Entry("warning", fmi.Warning, fmi.StepCompleted),
			Entry("discard", fmi.Discard, fmi.StepFailed),
			Entry("error", fmi.Error, fmi.ErrorState),
			Entry("fatal", fmi.Fatal, fmi.FatalState),
			Entry("pending", fmi.Pending, fmi.StepInProgress),
		)

		It("recovers from a discarded step", func() {
			m.Step(returning(fmi.Discard))
			Expect(m.State()).To(Equal(fmi.StepFailed))

			status, err := m.Step(returning(fmi.OK))
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(fmi.OK))
			Expect(m.State()).To(Equal(fmi.StepCompleted))
		})

		It("leaves stepInProgress on the next step", func() {
			m.Step(returning(fmi.Pending))
			Expect(m.State()).To(Equal(fmi.StepInProgress))

			status, err := m.Step(returning(fmi.OK))
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(fmi.OK))
			Expect(m.State()).To(Equal(fmi.StepCompleted))
		})

		It("runs callbacks around the hook in registration order", func() {
			var trace []string
			m.OnPreStep(func() { trace = append(trace, "pre1") })
			m.OnPreStep(func() { trace = append(trace, "pre2") })
			m.OnPostStep(func() { trace = append(trace, "post1") })
			m.OnPostStep(func() { trace = append(trace, "post2") })

			m.Step(func() fmi.Status {
				trace = append(trace, "step")
				return fmi.OK
			})

			Expect(trace).To(Equal([]string{"pre1", "pre2", "step", "post1", "post2"}))
		})

		It("runs post-step callbacks even when the step fails", func() {
			post := 0
			m.OnPostStep(func() { post++ })

			m.Step(returning(fmi.Error))
			Expect(post).To(Equal(1))
		})

		It("treats an unknown status as an internal error", func() {
			status, err := m.Step(returning(fmi.Status(42)))
			Expect(err).To(MatchError(fmi.ErrInternal))
			Expect(status).To(Equal(fmi.Fatal))
			Expect(m.State()).To(Equal(fmi.FatalState))
		})

		It("refuses to step after an error", func() {
			m.Step(returning(fmi.Error))

			calls := 0
			_, err := m.Step(func() fmi.Status { calls++; return fmi.OK })
			Expect(err).To(MatchError(fmi.ErrIllegalCall))
			Expect(calls).To(BeZero())
			Expect(m.State()).To(Equal(fmi.ErrorState))
		})

		It("returns to instantiated on reset", func() {
			m.Step(returning(fmi.Fatal))
			m.Reset()
			Expect(m.State()).To(Equal(fmi.Instantiated))

			_, err := m.EnterInitializationMode(nil)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("refuses to step before initialization", func() {
		_, err := m.Step(returning(fmi.OK))
		Expect(err).To(MatchError(fmi.ErrIllegalCall))
		Expect(m.State()).To(Equal(fmi.Instantiated))
	})
})
