// Package hook provides a try/catch/finally execution guard. The sequencer
// runs step actions through it so a panicking action surfaces as a step
// failure instead of crashing the whole run.
package hook

import "fmt"

// Interface is a unit of guarded work.
type Interface interface {
	// Try performs the work.
	Try() error
	// Catch handles the error from Try and returns the error to surface.
	Catch(err error) error
	// Finally always runs after Try (and Catch, if invoked).
	Finally()
}

// Call runs the hook. Panics inside Try are recovered and returned as errors.
func Call(h Interface) (err error) {
	if h == nil {
		return fmt.Errorf("hook cannot be nil")
	}

	defer h.Finally()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during hook execution: %v", r)
		}
	}()

	if tryErr := h.Try(); tryErr != nil {
		return h.Catch(tryErr)
	}
	return nil
}

// funcHook adapts plain functions to Interface.
type funcHook struct {
	try     func() error
	catch   func(error) error
	finally func()
}

func (f *funcHook) Try() error { return f.try() }

func (f *funcHook) Catch(err error) error {
	if f.catch == nil {
		return err
	}
	return f.catch(err)
}

func (f *funcHook) Finally() {
	if f.finally != nil {
		f.finally()
	}
}

// Guard runs fn with panic recovery and no catch/finally behaviour.
func Guard(fn func() error) error {
	return Call(&funcHook{try: fn})
}
