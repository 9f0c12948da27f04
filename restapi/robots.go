package restapi

import (
	"context"
	"net/http"
	"net/url"

	"agvdash/fleet"
)

func robotPath(serial string) string {
	return "/robots/" + url.PathEscape(serial)
}

// ListConnectedRobots returns the serials the backend currently sees.
func (c *Client) ListConnectedRobots(ctx context.Context) ([]string, error) {
	return getData[[]string](ctx, c, "/robots/connected")
}

func (c *Client) GetRobotState(ctx context.Context, serial string) (*fleet.RobotState, error) {
	if err := requireID("serialNumber", serial); err != nil {
		return nil, err
	}
	return getData[*fleet.RobotState](ctx, c, robotPath(serial)+"/state")
}

func (c *Client) GetRobotHealth(ctx context.Context, serial string) (*fleet.RobotHealth, error) {
	if err := requireID("serialNumber", serial); err != nil {
		return nil, err
	}
	return getData[*fleet.RobotHealth](ctx, c, robotPath(serial)+"/health")
}

func (c *Client) GetRobotCapabilities(ctx context.Context, serial string) (*fleet.RobotCapabilities, error) {
	if err := requireID("serialNumber", serial); err != nil {
		return nil, err
	}
	return getData[*fleet.RobotCapabilities](ctx, c, robotPath(serial)+"/capabilities")
}

// SendRobotCommand posts an instant action to one robot.
func (c *Client) SendRobotCommand(ctx context.Context, serial string, cmd *fleet.RobotCommand) error {
	if err := requireID("serialNumber", serial); err != nil {
		return err
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, robotPath(serial)+"/commands", cmd, nil)
}
