package restapi

import (
	"context"
	"fmt"
	"net/http"

	"agvdash/fleet"
)

// Template resources share one CRUD shape; Validate runs before any request.

type validator interface{ Validate() error }

func createOrUpdate[T validator](ctx context.Context, c *Client, base string, id int64, v T) (T, error) {
	if err := v.Validate(); err != nil {
		var zero T
		return zero, err
	}
	if id == 0 {
		return sendData[T](ctx, c, http.MethodPost, base, v)
	}
	return sendData[T](ctx, c, http.MethodPut, fmt.Sprintf("%s/%d", base, id), v)
}

// --- Actions ---

func (c *Client) ListActionTemplates(ctx context.Context, opts ListOptions) (*ListResponse[fleet.ActionTemplate], error) {
	return getList[fleet.ActionTemplate](ctx, c, "/actions", opts)
}

func (c *Client) GetActionTemplate(ctx context.Context, id int64) (*fleet.ActionTemplate, error) {
	return getData[*fleet.ActionTemplate](ctx, c, fmt.Sprintf("/actions/%d", id))
}

// SaveActionTemplate creates the template when a.ID is zero, otherwise updates it.
func (c *Client) SaveActionTemplate(ctx context.Context, a *fleet.ActionTemplate) (*fleet.ActionTemplate, error) {
	return createOrUpdate(ctx, c, "/actions", a.ID, a)
}

func (c *Client) DeleteActionTemplate(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/actions/%d", id))
}

// --- Nodes ---

func (c *Client) ListNodeTemplates(ctx context.Context, opts ListOptions) (*ListResponse[fleet.NodeTemplate], error) {
	return getList[fleet.NodeTemplate](ctx, c, "/nodes", opts)
}

func (c *Client) GetNodeTemplate(ctx context.Context, id int64) (*fleet.NodeTemplate, error) {
	return getData[*fleet.NodeTemplate](ctx, c, fmt.Sprintf("/nodes/%d", id))
}

func (c *Client) SaveNodeTemplate(ctx context.Context, n *fleet.NodeTemplate) (*fleet.NodeTemplate, error) {
	return createOrUpdate(ctx, c, "/nodes", n.ID, n)
}

func (c *Client) DeleteNodeTemplate(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/nodes/%d", id))
}

// --- Edges ---

func (c *Client) ListEdgeTemplates(ctx context.Context, opts ListOptions) (*ListResponse[fleet.EdgeTemplate], error) {
	return getList[fleet.EdgeTemplate](ctx, c, "/edges", opts)
}

func (c *Client) GetEdgeTemplate(ctx context.Context, id int64) (*fleet.EdgeTemplate, error) {
	return getData[*fleet.EdgeTemplate](ctx, c, fmt.Sprintf("/edges/%d", id))
}

func (c *Client) SaveEdgeTemplate(ctx context.Context, e *fleet.EdgeTemplate) (*fleet.EdgeTemplate, error) {
	return createOrUpdate(ctx, c, "/edges", e.ID, e)
}

func (c *Client) DeleteEdgeTemplate(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/edges/%d", id))
}

// --- Order templates ---

func (c *Client) ListOrderTemplates(ctx context.Context, opts ListOptions) (*ListResponse[fleet.OrderTemplate], error) {
	return getList[fleet.OrderTemplate](ctx, c, "/order-templates", opts)
}

func (c *Client) GetOrderTemplate(ctx context.Context, id int64) (*fleet.OrderTemplate, error) {
	return getData[*fleet.OrderTemplate](ctx, c, fmt.Sprintf("/order-templates/%d", id))
}

func (c *Client) SaveOrderTemplate(ctx context.Context, t *fleet.OrderTemplate) (*fleet.OrderTemplate, error) {
	return createOrUpdate(ctx, c, "/order-templates", t.ID, t)
}

func (c *Client) DeleteOrderTemplate(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/order-templates/%d", id))
}
