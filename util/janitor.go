package util

import "sync"

// Janitor keeps the cleanup functions of a scoped resource and runs them in
// reverse order of registration.
type Janitor struct {
	fs      []func()
	cleaned bool
	sync.Mutex
}

func NewJanitor() *Janitor {
	return &Janitor{}
}

// Add registers the cleanup function. If the Janitor is already cleaned, f is
// called immediately.
func (j *Janitor) Add(fs ...func()) {
	j.Lock()

	if j.cleaned {
		j.Unlock()

		for i := range fs {
			fs[i]()
		}

		return
	}

	defer j.Unlock()

	j.fs = append(j.fs, fs...)
}

// Clean runs the registered functions once; the next Clean calls do nothing.
func (j *Janitor) Clean() bool {
	j.Lock()

	if j.cleaned {
		j.Unlock()

		return false
	}

	fs := j.fs
	j.fs = nil
	j.cleaned = true

	j.Unlock()

	for i := len(fs) - 1; i >= 0; i-- {
		fs[i]()
	}

	return true
}

func (j *Janitor) IsCleaned() bool {
	j.Lock()
	defer j.Unlock()

	return j.cleaned
}

func (j *Janitor) Len() int {
	j.Lock()
	defer j.Unlock()

	return len(j.fs)
}
