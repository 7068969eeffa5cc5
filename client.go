package taxreg

import (
	"bufio"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/tfkr-ae/taxreg/wire"
)

// ErrorCode classifies the outcome of a client request. Transport failures are
// reported through the code rather than surfaced as raw errors, so front-ends
// can branch on the value directly.
type ErrorCode int

const (
	NoError         ErrorCode = 0 // Request sent, response received
	ClientBusy      ErrorCode = 1 // Another request is still in flight
	ConnectionError ErrorCode = 2 // Dial, write or read failed
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "no error"
	case ClientBusy:
		return "client busy"
	case ConnectionError:
		return "connection error"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// Result is what every SendRequest call produces. Response holds the raw
// server payload (without the delimiter) and is only meaningful when Error is
// NoError.
type Result struct {
	Error    ErrorCode
	Response []byte
}

// Client sends one request per connection to the registry server. A single
// Client allows one request in flight at a time; concurrent calls are refused
// with ClientBusy instead of queued. The zero value is not usable, construct
// with NewClient.
type Client struct {
	Addr    string
	Port    string
	Timeout time.Duration // Dial and I/O deadline; 0 disables deadlines

	busy atomic.Bool
}

// NewClient returns a client targeting address:port.
func NewClient(address string, port string) *Client {
	return &Client{
		Addr:    address,
		Port:    port,
		Timeout: 10 * time.Second,
	}
}

// IsBusy reports whether a request is currently in flight.
func (client *Client) IsBusy() bool {
	return client.busy.Load()
}

// SendRequest encodes the command, opens a fresh connection, writes the
// message and reads the single response. The busy flag is claimed before any
// network work starts and released once the connection is torn down, whatever
// the outcome.
func (client *Client) SendRequest(req wire.Request) Result {
	if !client.busy.CompareAndSwap(false, true) {
		return Result{Error: ClientBusy}
	}
	defer client.busy.Store(false)

	message, err := wire.EncodeRequest(req)
	if err != nil {
		return Result{Error: ConnectionError}
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(client.Addr, client.Port), client.Timeout)
	if err != nil {
		return Result{Error: ConnectionError}
	}
	defer conn.Close()

	if client.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(client.Timeout))
	}

	if err := wire.WriteMessage(conn, message); err != nil {
		return Result{Error: ConnectionError}
	}

	response, err := wire.ReadMessage(bufio.NewReader(conn))
	if err != nil {
		return Result{Error: ConnectionError}
	}
	return Result{Error: NoError, Response: response}
}
