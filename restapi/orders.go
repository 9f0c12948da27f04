package restapi

import (
	"context"
	"net/http"
	"net/url"

	"agvdash/fleet"
)

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id)
}

func (c *Client) ListOrders(ctx context.Context, opts ListOptions) (*ListResponse[fleet.OrderExecution], error) {
	return getList[fleet.OrderExecution](ctx, c, "/orders", opts)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*fleet.OrderExecution, error) {
	return getData[*fleet.OrderExecution](ctx, c, orderPath(id))
}

// ExecuteOrder starts a template on a robot and returns the new execution.
func (c *Client) ExecuteOrder(ctx context.Context, req *fleet.ExecuteOrderRequest) (*fleet.OrderExecution, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return sendData[*fleet.OrderExecution](ctx, c, http.MethodPost, "/orders/execute", req)
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*fleet.OrderExecution, error) {
	if err := requireID("orderId", id); err != nil {
		return nil, err
	}
	return sendData[*fleet.OrderExecution](ctx, c, http.MethodPost, orderPath(id)+"/cancel", nil)
}

type statusUpdate struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status, errorMessage string) (*fleet.OrderExecution, error) {
	if err := requireID("orderId", id); err != nil {
		return nil, err
	}
	if err := requireID("status", status); err != nil {
		return nil, err
	}
	return sendData[*fleet.OrderExecution](ctx, c, http.MethodPatch, orderPath(id)+"/status",
		statusUpdate{Status: status, ErrorMessage: errorMessage})
}

func requireID(field, v string) error {
	if v == "" {
		return &fleet.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
