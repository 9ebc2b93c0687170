// Package guard implements the safety scanner chains applied to user input
// before retrieval and to generated output before it is returned. Scanners
// are independent policy checks, evaluated in declared order with fail-fast
// veto semantics: the first scanner that vetoes or fails stops the chain.
package guard

// Verdict is the outcome of a single scanner.
type Verdict struct {
	// Sanitized is the (possibly rewritten) text to pass down the chain.
	Sanitized string
	// Valid is false when the scanner vetoes the text.
	Valid bool
	// Risk scores how strongly the policy matched, in [0, 1].
	Risk float64
}

// InputScanner checks raw user input.
type InputScanner interface {
	Name() string
	Scan(text string) (Verdict, error)
}

// OutputScanner checks generated output, given the original prompt as context.
type OutputScanner interface {
	Name() string
	Scan(prompt, output string) (Verdict, error)
}

// Result is the outcome of running a full chain.
type Result struct {
	// Sanitized is the text after all scanners ran. Meaningless when Blocked.
	Sanitized string
	// Blocked is true when a scanner vetoed the text or failed.
	Blocked bool
	// Fault is true when the block was caused by a scanner failure rather
	// than a policy veto. Faults indicate infrastructure trouble and are
	// logged differently, but callers see the same blocked outcome.
	Fault bool
	// Scanner names the scanner that stopped the chain.
	Scanner string
	// Risk is the risk score reported by the blocking scanner.
	Risk float64
}

// InputChain is an ordered list of input scanners.
type InputChain []InputScanner

// Scan runs the chain over text, stopping at the first veto or failure.
func (c InputChain) Scan(text string) Result {
	sanitized := text
	for _, scanner := range c {
		verdict, err := scanner.Scan(sanitized)
		if err != nil {
			return Result{Blocked: true, Fault: true, Scanner: scanner.Name()}
		}
		if !verdict.Valid {
			return Result{Blocked: true, Scanner: scanner.Name(), Risk: verdict.Risk}
		}
		sanitized = verdict.Sanitized
	}
	return Result{Sanitized: sanitized}
}

// OutputChain is an ordered list of output scanners.
type OutputChain []OutputScanner

// Scan runs the chain over output, stopping at the first veto or failure.
func (c OutputChain) Scan(prompt, output string) Result {
	sanitized := output
	for _, scanner := range c {
		verdict, err := scanner.Scan(prompt, sanitized)
		if err != nil {
			return Result{Blocked: true, Fault: true, Scanner: scanner.Name()}
		}
		if !verdict.Valid {
			return Result{Blocked: true, Scanner: scanner.Name(), Risk: verdict.Risk}
		}
		sanitized = verdict.Sanitized
	}
	return Result{Sanitized: sanitized}
}
