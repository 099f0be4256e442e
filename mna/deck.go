package mna

// Device is satisfied by every stampable circuit element (see package
// devices). mna only needs to carry devices opaquely between the parser
// collaborator and the analysis drivers; it does not know how to stamp them.
type Device interface {
	// Name returns the device's netlist designator, e.g. "R1".
	Name() string
}

// Command is one analysis directive from the netlist (.op, .dc, .tran).
type Command interface {
	isCommand()
}

// OpCommand requests a single operating-point (DC) analysis.
type OpCommand struct{}

func (OpCommand) isCommand() {}

// DcCommand sweeps source Source from V0 to V1 in steps of Step.
type DcCommand struct {
	Source     string
	V0, V1     float64
	Step       float64
}

func (DcCommand) isCommand() {}

// TranCommand requests a transient analysis on a uniform time grid
// t_m = m*TStep, m = 0..floor(TStop/TStep).
type TranCommand struct {
	TStep, TStop float64
	// UIC requests "use initial conditions" from device IC values directly.
	// Unimplemented; see ErrUICNotSupported in package analysis.
	UIC bool
}

func (TranCommand) isCommand() {}

// Deck is the fully resolved circuit handed to the analysis drivers: a
// title, a list of analysis commands, the flattened device list, and the
// node/branch index mapping. Deck is produced entirely by the netlist
// collaborator (lexing, subcircuit expansion, expression evaluation); this
// module never constructs one from raw text.
type Deck struct {
	Title    string
	Commands []Command
	Devices  []Device
	Mapping  *NodeMapping
}
