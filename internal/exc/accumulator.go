// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter is used to accumulate and report errors while lexing and parsing
// formulas. Processing can decide to report an error but continue rather than
// fail outright in some cases. The final set can then be shown to the user.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

// NewDiscardReporter returns a Reporter that drops everything. Speculative
// parses report into one of these so that a failed attempt leaves no trace.
func NewDiscardReporter() Reporter {
	return discard{}
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]Exception, len(r.Reporter.Reported()))
	copy(out, r.Reporter.Reported())
	return out
}

type discard struct{}

func (discard) Report(e Exception) Exception {
	return e
}

func (discard) Reported() []Exception {
	return nil
}

// Forward reports every exception in from to the given reporter. A nil
// destination is allowed and does nothing.
func Forward(to Reporter, from []Exception) {
	if to == nil {
		return
	}
	for _, e := range from {
		_ = to.Report(e)
	}
}
