package sim

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nihilo/internal/dynamo"
)

func TestRegistry(t *testing.T) {
	g := NewWithT(t)
	r := NewRegistry()

	g.Expect(r.ListIntegrators()).To(Equal([]string{"euler", "rk4", "verlet"}))
	g.Expect(r.ListMotions()).To(Equal([]string{"classic", "relativist"}))

	integ, err := r.GetIntegrator("rk4")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(integ.Name()).To(Equal("rk4"))

	_, err = r.GetMotion("quantum")
	g.Expect(errors.Is(err, dynamo.ErrUnknownComponent)).To(BeTrue())

	opts, err := r.Options("verlet", "relativist")
	g.Expect(err).NotTo(HaveOccurred())
	infos, states := earthMoon()
	_, err = New(infos, states, opts...)
	g.Expect(err).To(MatchError(dynamo.ErrIncompatibleIntegrator))
}

func TestEnsemble(t *testing.T) {
	g := NewWithT(t)
	infos, states := earthMoon()
	r := NewRegistry()

	e := NewEnsemble(infos, states, 500)
	for _, name := range []string{"euler", "verlet"} {
		opts, err := r.Options(name, "classic")
		g.Expect(err).NotTo(HaveOccurred())
		e.Add(name, append(opts, WithTimeStep(3600))...)
	}

	results, err := e.Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))
	g.Expect(results[0].Integrator).To(Equal("euler"))
	g.Expect(results[1].Integrator).To(Equal("verlet"))
	g.Expect(results[1].EnergyDrift).To(BeNumerically("<", results[0].EnergyDrift))
}

func TestEnsembleFailsFast(t *testing.T) {
	infos, states := earthMoon()
	e := NewEnsemble(infos, states, 10)
	e.Add("ok")
	e.Add("bad", WithTimeStep(-1))

	if _, err := e.Run(context.Background()); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
