// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

// semaphore bounds how many files load or formulas evaluate at once.
type semaphore struct {
	x chan bool
}

func newSemaphore(v int) *semaphore {
	return &semaphore{
		x: make(chan bool, v),
	}
}
func (self *semaphore) Lock() {
	self.x <- false
}

func (self *semaphore) Unlock() {
	<-self.x
}
