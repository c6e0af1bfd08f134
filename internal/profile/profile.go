// Package profile accumulates per-function call counts during a
// --debug run and writes them out in the profile.proto format
// github.com/google/pprof understands, so `go tool pprof` can inspect
// which functions a Cb program actually called and how often.
package profile

import (
	"io"

	pprofpb "github.com/google/pprof/profile"
)

// CallProfiler counts invocations per qualified function/method name.
// A nil *CallProfiler is a valid no-op receiver, so call sites never
// need to guard a disabled (non-debug) run with an extra check.
type CallProfiler struct {
	counts map[string]int64
	order  []string
}

// New creates an empty CallProfiler.
func New() *CallProfiler {
	return &CallProfiler{counts: make(map[string]int64)}
}

// Record notes one invocation of qualifiedName ("f" for a plain
// function, "Struct.method" for a method dispatch).
func (c *CallProfiler) Record(qualifiedName string) {
	if c == nil {
		return
	}
	if _, ok := c.counts[qualifiedName]; !ok {
		c.order = append(c.order, qualifiedName)
	}
	c.counts[qualifiedName]++
}

// Write encodes the accumulated counts as a one-sample-per-function
// pprof profile and writes it to w.
func (c *CallProfiler) Write(w io.Writer) error {
	if c == nil {
		return nil
	}
	p := &pprofpb.Profile{
		SampleType: []*pprofpb.ValueType{{Type: "calls", Unit: "count"}},
		PeriodType: &pprofpb.ValueType{Type: "calls", Unit: "count"},
		Period:     1,
	}
	for i, name := range c.order {
		id := uint64(i + 1)
		fn := &pprofpb.Function{ID: id, Name: name, SystemName: name}
		loc := &pprofpb.Location{ID: id, Line: []pprofpb.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &pprofpb.Sample{
			Location: []*pprofpb.Location{loc},
			Value:    []int64{c.counts[name]},
		})
	}
	return p.Write(w)
}
