package ipc

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client talks to a running daemon over the control socket.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the control socket.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial control socket: %w", err)
	}
	return &Client{rpc: jsonrpc.NewClient(conn)}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// Status fetches daemon status.
func (c *Client) Status() (StatusResponse, error) {
	var reply StatusResponse
	if err := c.rpc.Call("Mediagate.Status", &StatusRequest{}, &reply); err != nil {
		return StatusResponse{}, err
	}
	return reply, nil
}

// History lists ledger rows, newest first.
func (c *Client) History(userID int64, limit int) ([]HistoryRecord, error) {
	var reply HistoryResponse
	if err := c.rpc.Call("Mediagate.History", &HistoryRequest{UserID: userID, Limit: limit}, &reply); err != nil {
		return nil, err
	}
	return reply.Records, nil
}

// Sessions lists active user sessions.
func (c *Client) Sessions() ([]SessionInfo, error) {
	var reply SessionsResponse
	if err := c.rpc.Call("Mediagate.Sessions", &SessionsRequest{}, &reply); err != nil {
		return nil, err
	}
	return reply.Sessions, nil
}

// Sweep triggers an immediate temp sweep.
func (c *Client) Sweep() (SweepResponse, error) {
	var reply SweepResponse
	if err := c.rpc.Call("Mediagate.Sweep", &SweepRequest{}, &reply); err != nil {
		return SweepResponse{}, err
	}
	return reply, nil
}
