// Package test provides helpers shared by package tests.
package test

import (
	"net"
	"sync"
)

var ports struct {
	sync.Mutex
	handed map[int]bool
}

// RandomPort asks the kernel for a free loopback port. A port is never
// handed out twice within one test binary.
func RandomPort() int {
	ports.Lock()
	defer ports.Unlock()
	if ports.handed == nil {
		ports.handed = make(map[int]bool)
	}
	for {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			panic(err)
		}
		port := l.Addr().(*net.TCPAddr).Port
		_ = l.Close()
		if !ports.handed[port] {
			ports.handed[port] = true
			return port
		}
	}
}
