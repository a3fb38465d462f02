package cmdparse

import (
	"iter"

	"github.com/charmbracelet/log"
)

// Results is a lazy, single pass sequence of handler results. The handler runs only when
// Next is called, once per combination of candidate values, with the rightmost argument
// varying fastest. Stopping early skips the remaining invocations.
type Results struct {
	cmd    *Command
	sets   [][]any
	kwargs map[string]any
	log    *log.Logger

	idx     []int
	started bool
	done    bool
	value   any
	err     error
	count   int
}

func newResults(cmd *Command, sets [][]any, kwargs map[string]any, l *log.Logger) *Results {
	return &Results{cmd: cmd, sets: sets, kwargs: kwargs, log: l}
}

// Next invokes the handler for the next combination. It returns false once the sequence
// is exhausted or the handler failed; check Err to tell the two apart.
func (r *Results) Next() bool {
	if r.done {
		return false
	}
	if !r.started {
		r.started = true
		r.idx = make([]int, len(r.sets))
		for _, s := range r.sets {
			if len(s) == 0 {
				return r.finish()
			}
		}
	} else if !r.advance() {
		return r.finish()
	}

	args := make([]any, len(r.sets))
	for i, s := range r.sets {
		args[i] = s[r.idx[i]]
	}
	v, err := r.cmd.handler(args, r.kwargs)
	if err != nil {
		r.err = err
		r.value = nil
		r.done = true
		return false
	}
	r.value = v
	r.count++
	return true
}

// advance moves the odometer to the next combination.
func (r *Results) advance() bool {
	for i := len(r.idx) - 1; i >= 0; i-- {
		r.idx[i]++
		if r.idx[i] < len(r.sets[i]) {
			return true
		}
		r.idx[i] = 0
	}
	return false
}

func (r *Results) finish() bool {
	r.done = true
	r.value = nil
	r.log.Debug("Command finished", "command", r.cmd.name, "executions", r.count)
	return false
}

// Value returns the result produced by the last successful Next.
func (r *Results) Value() any {
	return r.value
}

// Err returns the handler error that stopped iteration, if any.
func (r *Results) Err() error {
	return r.err
}

// Count returns the number of successful handler invocations so far. After Done it is the
// total for the command line.
func (r *Results) Count() int {
	return r.count
}

// Done reports whether the sequence is exhausted.
func (r *Results) Done() bool {
	return r.done
}

// All adapts Results to a range-over-func iterator. A handler error is yielded last.
func (r *Results) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for r.Next() {
			if !yield(r.Value(), nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Collect drains the sequence and returns every result with the invocation count.
func (r *Results) Collect() ([]any, int, error) {
	var out []any
	for r.Next() {
		out = append(out, r.Value())
	}
	return out, r.count, r.err
}
