//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var loops sync.Map

// GetLoop returns the default loop of the calling goroutine.
func GetLoop() *Loop {
	gid := getGID()

	if l, ok := loops.Load(gid); ok {
		return l.(*Loop)
	}

	l := NewLoop()
	loops.Store(gid, l)
	return l
}

func getGID() int64 {
	return goid.Get()
}
