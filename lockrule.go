package univerconv

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// LockEnv is what a lock rule expression can see about a cell.
type LockEnv struct {
	Sheet   string `expr:"sheet"`
	Row     int    `expr:"row"`
	Col     int    `expr:"col"`
	Ref     string `expr:"ref"`
	Value   any    `expr:"value"`
	Type    string `expr:"type"`
	Formula string `expr:"formula"`
}

// LockRule is a compiled boolean expression selecting cells to lock,
// e.g. `row == 0 || formula != ""` or `sheet == "Totals" && col > 2`.
type LockRule struct {
	source  string
	program *vm.Program
}

// CompileLockRule compiles a lock rule expression. A Builder compiles its
// rule once and evaluates it for every cell.
func CompileLockRule(source string) (*LockRule, error) {
	program, err := expr.Compile(source, expr.Env(LockEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile lock rule %q: %w", source, err)
	}
	return &LockRule{source: source, program: program}, nil
}

// Match evaluates the rule for one cell.
func (r *LockRule) Match(env LockEnv) (bool, error) {
	out, err := expr.Run(r.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate lock rule %q: %w", r.source, err)
	}
	b, _ := out.(bool)
	return b, nil
}

// String returns the rule source.
func (r *LockRule) String() string {
	return r.source
}
