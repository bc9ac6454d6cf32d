package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Shelf.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Organize runs a full organization pass and returns its summary.
func (c *Client) Organize() (*OrganizeResponse, error) {
	var resp OrganizeResponse
	if err := c.client.Call("Shelf.Organize", OrganizeRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Shelf.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReloadRules re-reads classification rules from the daemon's config file.
func (c *Client) ReloadRules() (*ReloadRulesResponse, error) {
	var resp ReloadRulesResponse
	if err := c.client.Call("Shelf.ReloadRules", ReloadRulesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleAdd registers a new scheduled pass.
func (c *Client) ScheduleAdd(req ScheduleAddRequest) (*ScheduleAddResponse, error) {
	var resp ScheduleAddResponse
	if err := c.client.Call("Shelf.ScheduleAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleRemove deletes a scheduled pass by id.
func (c *Client) ScheduleRemove(id string) (*ScheduleRemoveResponse, error) {
	var resp ScheduleRemoveResponse
	if err := c.client.Call("Shelf.ScheduleRemove", ScheduleRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleList returns the current timetable.
func (c *Client) ScheduleList() (*ScheduleListResponse, error) {
	var resp ScheduleListResponse
	if err := c.client.Call("Shelf.ScheduleList", ScheduleListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Outcomes returns recent processing results, newest first.
func (c *Client) Outcomes(limit int) (*OutcomesResponse, error) {
	var resp OutcomesResponse
	if err := c.client.Call("Shelf.Outcomes", OutcomesRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RebuildIndex repopulates the digest index from organized files.
func (c *Client) RebuildIndex() (*RebuildIndexResponse, error) {
	var resp RebuildIndexResponse
	if err := c.client.Call("Shelf.RebuildIndex", RebuildIndexRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Shelf.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
