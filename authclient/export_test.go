package authclient

import (
	"context"
	"net/http"
)

func QueuedRequests(c *Client) int {
	_, queued := c.refresher.inFlight()
	return queued
}

func Refreshing(c *Client) bool {
	refreshing, _ := c.refresher.inFlight()
	return refreshing
}

func AttachToken(c *Client, ctx context.Context, req *http.Request, attempt Attempt) {
	c.attachToken(ctx, req, attempt)
}
