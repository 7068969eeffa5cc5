// Package listener wraps net.Listener for the taxreg server. The wrapper keeps
// the accept loop alive through recoverable errors so one misbehaving client
// can never stop the server from accepting the next connection. The server
// depends only on net.Listener, so a bounded or instrumented variant can be
// substituted without touching the connection handling.
package listener

import (
	"errors"
	"log"
	"net"
)

// RegistryListener wraps net.Listener to be resilient, recoverable errors are handled gracefully.
type RegistryListener struct {
	net.Listener
}

func NewRegistryListener(listenerToWrap net.Listener) *RegistryListener {
	return &RegistryListener{Listener: listenerToWrap}
}

// Accept will gracefully handle recoverable errors and continue without crashing the server.
func (l *RegistryListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			// If the listener was closed, this is a fatal error. Propagate it.
			if errors.Is(err, net.ErrClosed) {
				return nil, err
			}

			// For any other error, log it and continue to the next connection attempt.
			log.Printf("Recoverable listener error, connection rejected: %v", err)
			continue
		}
		return conn, nil
	}
}
