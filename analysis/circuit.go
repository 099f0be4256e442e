package analysis

import (
	"fmt"
	"sort"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/klu"
	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// circuit is one deck's assembled MNA pattern plus the klu Symbolic/Numeric
// pair the drivers reuse across Newton iterations, sweep points, and time
// steps (spec §4.E.1 step 3: analyze+factor once, refactor thereafter — the
// pattern never changes for a fixed deck, only the values do).
type circuit struct {
	mapping *mna.NodeMapping
	n       int
	a       *sparse.CSC
	devs    []devices.Device // canonical stamping order (spec §4.E.3)
	byName  map[string]devices.Device

	sym *klu.Symbolic
	num *klu.Numeric
}

// deviceRank orders devices for stamping per spec §4.E.3: resistors →
// inductors → capacitors (transient only) → voltage sources → current
// sources → diodes → BJTs.
func deviceRank(d devices.Device) int {
	switch d.(type) {
	case *devices.Resistor:
		return 0
	case *devices.Inductor:
		return 1
	case *devices.Capacitor:
		return 2
	case *devices.VoltageSource:
		return 3
	case *devices.CurrentSource:
		return 4
	case *devices.Diode:
		return 5
	case *devices.BJT:
		return 6
	default:
		return 7
	}
}

// newCircuit builds the matrix pattern and resolves every device's stamp
// handle against it (spec §4.D "stamp handles" two-phase resolution).
func newCircuit(deck *mna.Deck) (*circuit, error) {
	n := deck.Mapping.MNAMatrixDim()
	mb, err := sparse.NewMatrixBuilder(n, n)
	if err != nil {
		return nil, fmt.Errorf("newCircuit: %w", err)
	}

	devs := make([]devices.Device, 0, len(deck.Devices))
	byName := make(map[string]devices.Device, len(deck.Devices))
	for _, d := range deck.Devices {
		dd, ok := d.(devices.Device)
		if !ok {
			return nil, fmt.Errorf("newCircuit: %s: %w", d.Name(), ErrUnsupportedDevice)
		}
		devs = append(devs, dd)
		byName[dd.Name()] = dd
	}
	sort.SliceStable(devs, func(i, j int) bool { return deviceRank(devs[i]) < deviceRank(devs[j]) })

	for _, dd := range devs {
		if err := dd.RegisterPattern(mb); err != nil {
			return nil, fmt.Errorf("newCircuit: %s: %w", dd.Name(), err)
		}
	}
	a, entryMap, err := mb.BuildCSCPattern()
	if err != nil {
		return nil, fmt.Errorf("newCircuit: %w", err)
	}
	for _, dd := range devs {
		dd.ResolvePattern(entryMap)
	}

	return &circuit{
		mapping: deck.Mapping,
		n:       n,
		a:       a,
		devs:    devs,
		byName:  byName,
	}, nil
}

// stampAll zeros A and rhs, then stamps every device in canonical order. A
// capacitor stamps nothing on a non-transient ctx (spec §4.D: DC OP opens
// capacitors); every other device stamps unconditionally.
func (c *circuit) stampAll(rhs []float64, ctx *devices.StampContext) error {
	c.a.ZeroValues()
	for i := range rhs {
		rhs[i] = 0
	}
	for _, d := range c.devs {
		if err := d.Stamp(c.a, rhs, ctx); err != nil {
			return fmt.Errorf("stampAll: %s: %w", d.Name(), err)
		}
	}

	return nil
}

// factorOrRefactor runs analyze+factor on the first call for this circuit
// and refactor on every subsequent one, since the pattern is fixed for the
// lifetime of a circuit (spec §4.E.1 step 3).
func (c *circuit) factorOrRefactor(cfg klu.Config) error {
	var err error
	if c.sym == nil {
		c.sym, err = klu.Analyze(c.a, cfg)
		if err != nil {
			return fmt.Errorf("factorOrRefactor: analyze: %w", err)
		}
		c.num, err = klu.Factor(c.a, c.sym, cfg)
		if err != nil {
			return fmt.Errorf("factorOrRefactor: factor: %w", err)
		}

		return nil
	}

	c.num, err = klu.Refactor(c.a, c.sym, c.num, cfg)
	if err != nil {
		return fmt.Errorf("factorOrRefactor: refactor: %w", err)
	}

	return nil
}

// capacitors returns every capacitor in the deck, in declaration order
// (stable thanks to the stable sort in newCircuit).
func (c *circuit) capacitors() []*devices.Capacitor {
	var caps []*devices.Capacitor
	for _, d := range c.devs {
		if cap, ok := d.(*devices.Capacitor); ok {
			caps = append(caps, cap)
		}
	}

	return caps
}

// sourceSetter resolves a netlist designator to a closure that patches its
// independent value, for DC sweep continuation (spec §4.E.2).
func (c *circuit) sourceSetter(name string) (func(float64), error) {
	d, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("sourceSetter(%s): %w", name, ErrUnknownSource)
	}
	switch dd := d.(type) {
	case *devices.VoltageSource:
		return dd.SetVoltage, nil
	case *devices.CurrentSource:
		return dd.SetCurrent, nil
	default:
		return nil, fmt.Errorf("sourceSetter(%s): %w", name, ErrUnknownSource)
	}
}

// extractResult reads off node voltages and branch currents from a
// converged iterate, in MNA declaration order.
func (c *circuit) extractResult(x []float64) mna.OperatingPointResult {
	m := c.mapping
	res := mna.OperatingPointResult{
		Voltages: make([]mna.NamedValue, m.NodeCount()),
		Currents: make([]mna.NamedValue, m.BranchCount()),
	}
	for i := 0; i < m.NodeCount(); i++ {
		res.Voltages[i] = mna.NamedValue{Name: m.NodeName(i), Value: x[i]}
	}
	for j := 0; j < m.BranchCount(); j++ {
		res.Currents[j] = mna.NamedValue{Name: m.BranchName(j), Value: x[m.NodeCount()+j]}
	}

	return res
}

func (c *circuit) nodeNames() []string {
	m := c.mapping
	names := make([]string, m.NodeCount())
	for i := range names {
		names[i] = m.NodeName(i)
	}

	return names
}

func (c *circuit) branchNames() []string {
	m := c.mapping
	names := make([]string, m.BranchCount())
	for i := range names {
		names[i] = m.BranchName(i)
	}

	return names
}
