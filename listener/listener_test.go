package listener

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
)

// mockListener allows custom methods to be implemented for test cases
type mockListener struct {
	accept func() (net.Conn, error)
	close  func() error
	addr   func() net.Addr
}

func (m *mockListener) Accept() (net.Conn, error) { return m.accept() }
func (m *mockListener) Close() error              { return m.close() }
func (m *mockListener) Addr() net.Addr            { return m.addr() }

func TestRegistryListener_RecoversFromError(t *testing.T) {
	var acceptCount atomic.Int32

	want := []byte("hello taxreg")

	// Failing Listener will fail on the first Accept and then succeed
	failingListener := &mockListener{
		accept: func() (net.Conn, error) {
			currentCount := acceptCount.Add(1)
			if currentCount == 1 {
				return nil, errors.New("recoverable error")
			}
			server, client := net.Pipe()
			go func() {
				client.Write([]byte("hello taxreg"))
				client.Close()
			}()
			return server, nil
		},
	}

	registryListener := NewRegistryListener(failingListener)
	conn, err := registryListener.Accept()

	// The first error should be handled gracefully by RegistryListener
	if err != nil {
		t.Fatalf("RegistryListener.Accept() failed: %v", err)
	}

	defer conn.Close()

	got := make([]byte, len(want))
	_, err = conn.Read(got)
	if err != nil && err != io.EOF {
		t.Fatalf("failed to read from the connection: %v", err)
	}

	if !bytes.Equal(want, got) {
		t.Errorf("expected %s got %v", want, got)
	}

	acceptedCount := acceptCount.Load()
	if acceptedCount != 2 {
		t.Errorf("expected 2 got %d", acceptedCount)
	}
}

func TestRegistryListener_FatalError(t *testing.T) {
	var acceptCount atomic.Int32

	// fatalListener will immediately return a fatal error (net.ErrClosed)
	fatalListener := &mockListener{
		accept: func() (net.Conn, error) {
			acceptCount.Add(1)
			return nil, net.ErrClosed
		},
	}

	registryListener := NewRegistryListener(fatalListener)
	_, err := registryListener.Accept()

	if err == nil {
		t.Fatal("expected a fatal error but got nil")
	}

	if !errors.Is(err, net.ErrClosed) {
		t.Fatalf("expected error to be net.ErrClosed, but got: %v", err)
	}

	acceptedCount := acceptCount.Load()
	if acceptedCount != 1 {
		t.Errorf("expected 1 but got %d", acceptedCount)
	}
}
