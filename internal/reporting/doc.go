// Package reporting sends solver run events to the optional metrics and
// broker sinks.
//
// A run produces, in order:
//
//	Started   -> solver_prune point, retained "running" status
//	Solution  -> one solution message per layout (not retained)
//	Finished  -> solver_run point, retained terminal status
//
// Either sink may be absent. Sink errors are logged at warn and never fail
// the run.
package reporting
