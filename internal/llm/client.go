package llm

import "context"

// InputMessage is one role-tagged entry of a response request input.
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseRequest is a non-streaming call to the hosted responses endpoint.
type ResponseRequest struct {
	Model        string
	Instructions string
	Tools        []Tool
	Input        []InputMessage
	Temperature  float64
}

// FileUploader stores a file with the hosted file service.
type FileUploader interface {
	UploadFile(ctx context.Context, name string, data []byte) (string, error)
}

// ContainerCreator provisions a sandboxed execution container.
type ContainerCreator interface {
	CreateContainer(ctx context.Context, name string, fileIDs []string) (string, error)
}

// Responder calls the hosted chat/completion endpoint.
type Responder interface {
	CreateResponse(ctx context.Context, req ResponseRequest) (Response, error)
}

// ContainerFileFetcher downloads a file produced inside a container.
type ContainerFileFetcher interface {
	ContainerFileContent(ctx context.Context, containerID, fileID string) ([]byte, error)
}
