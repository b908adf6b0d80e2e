package llm

import "encoding/json"

// Tool is a capability granted to the model for a call.
type Tool interface {
	ToolType() string
}

// WebSearchTool lets the model search the web.
type WebSearchTool struct{}

func (WebSearchTool) ToolType() string { return "web_search_preview" }

func (t WebSearchTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": t.ToolType()})
}

// CodeInterpreterTool runs model-written code in a container. An empty
// ContainerID lets the service pick one ("auto").
type CodeInterpreterTool struct {
	ContainerID string
}

func (CodeInterpreterTool) ToolType() string { return "code_interpreter" }

func (t CodeInterpreterTool) Container() string {
	if t.ContainerID == "" {
		return "auto"
	}
	return t.ContainerID
}

func (t CodeInterpreterTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"type": t.ToolType(), "container": t.Container()})
}

// DefaultTools is the fixed tool configuration of a data session.
func DefaultTools(containerID string) []Tool {
	return []Tool{
		WebSearchTool{},
		CodeInterpreterTool{ContainerID: containerID},
	}
}
