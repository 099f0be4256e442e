// Package spicekit is the numerical core of a SPICE-style circuit simulator:
// a sparse direct linear solver (block triangularization, approximate
// minimum degree ordering, left-looking LU with partial pivoting) feeding a
// modified nodal analysis stamping and transient integration engine.
//
// The module is organized as:
//
//	mna/      — node/branch index space, Deck, result tables (the external
//	            interface boundary between this core and a netlist parser)
//	sparse/   — CSC matrix container and triplet-to-CSC pattern builder
//	ordering/ — maximum transversal, BTF via Tarjan SCC, approximate minimum
//	            degree ordering
//	klu/      — per-block symbolic/numeric left-looking LU, refactor, solve
//	devices/  — linear and nonlinear device stamping (R, C, L, V, I, diode, BJT)
//	analysis/ — operating point, DC sweep and transient analysis drivers
//	mtxio/    — MatrixMarket loader and a binary parity-dump format
//
// This core is single-threaded. Device stamping writes through
// pre-resolved nonzero slots with no per-call search; factorization
// workspaces are allocated by each Factor/Refactor call, and Solve
// allocates its own buffer per call.
package spicekit
