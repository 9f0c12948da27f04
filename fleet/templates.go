package fleet

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError is raised locally when a form is missing required input.
// It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ActionParameter is one key/value argument of an action template.
type ActionParameter struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ValueType string `json:"valueType,omitempty"`
}

// ActionTemplate is a reusable robot action.
type ActionTemplate struct {
	ID           int64             `json:"id,omitempty"`
	ActionType   string            `json:"actionType"`
	Description  string            `json:"actionDescription,omitempty"`
	BlockingType string            `json:"blockingType"`
	Parameters   []ActionParameter `json:"parameters,omitempty"`
	CreatedAt    time.Time         `json:"createdAt,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt,omitempty"`
}

func (a *ActionTemplate) Validate() error {
	if err := required("actionType", a.ActionType); err != nil {
		return err
	}
	switch a.BlockingType {
	case "NONE", "SOFT", "HARD":
	case "":
		return &ValidationError{Field: "blockingType", Message: "is required"}
	default:
		return &ValidationError{Field: "blockingType", Message: "must be NONE, SOFT or HARD"}
	}
	for _, p := range a.Parameters {
		if err := required("parameters.key", p.Key); err != nil {
			return err
		}
	}
	return nil
}

// NodeTemplate is a reusable navigation node.
type NodeTemplate struct {
	ID                    int64     `json:"id,omitempty"`
	NodeID                string    `json:"nodeId"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	SequenceID            int       `json:"sequenceId"`
	Released              bool      `json:"released"`
	X                     float64   `json:"x"`
	Y                     float64   `json:"y"`
	Theta                 float64   `json:"theta"`
	AllowedDeviationXY    float64   `json:"allowedDeviationXY"`
	AllowedDeviationTheta float64   `json:"allowedDeviationTheta"`
	MapID                 string    `json:"mapId"`
	ActionTemplateIDs     []int64   `json:"actionTemplateIds,omitempty"`
	CreatedAt             time.Time `json:"createdAt,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
}

func (n *NodeTemplate) Validate() error {
	if err := required("nodeId", n.NodeID); err != nil {
		return err
	}
	if err := required("name", n.Name); err != nil {
		return err
	}
	return required("mapId", n.MapID)
}

// EdgeTemplate connects two node templates.
type EdgeTemplate struct {
	ID                int64     `json:"id,omitempty"`
	EdgeID            string    `json:"edgeId"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	SequenceID        int       `json:"sequenceId"`
	Released          bool      `json:"released"`
	StartNodeID       string    `json:"startNodeId"`
	EndNodeID         string    `json:"endNodeId"`
	ActionTemplateIDs []int64   `json:"actionTemplateIds,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty"`
}

func (e *EdgeTemplate) Validate() error {
	if err := required("edgeId", e.EdgeID); err != nil {
		return err
	}
	if err := required("name", e.Name); err != nil {
		return err
	}
	if err := required("startNodeId", e.StartNodeID); err != nil {
		return err
	}
	return required("endNodeId", e.EndNodeID)
}

// OrderTemplate is a reusable order definition built from nodes and edges.
type OrderTemplate struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	NodeIDs     []string  `json:"nodeIds"`
	EdgeIDs     []string  `json:"edgeIds"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

func (o *OrderTemplate) Validate() error {
	if err := required("name", o.Name); err != nil {
		return err
	}
	if len(o.NodeIDs) == 0 {
		return &ValidationError{Field: "nodeIds", Message: "must contain at least one node"}
	}
	return nil
}
