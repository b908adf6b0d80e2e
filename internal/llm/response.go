package llm

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Response is the decoded body of a responses call. Output items, content
// blocks and annotations are closed sets; kinds this package does not know
// decode to the Unknown* variants.
type Response struct {
	ID     string
	Model  string
	Status string
	Output []OutputItem
}

type OutputItem interface {
	ItemType() string
}

// CodeInterpreterCall is code the model ran in the container.
type CodeInterpreterCall struct {
	ID          string
	Code        string
	ContainerID string
	Status      string
}

func (CodeInterpreterCall) ItemType() string { return "code_interpreter_call" }

// MessageItem is an assistant message made of content blocks.
type MessageItem struct {
	ID      string
	Role    string
	Content []ContentBlock
}

func (MessageItem) ItemType() string { return "message" }

type UnknownItem struct {
	Type string
}

func (u UnknownItem) ItemType() string { return u.Type }

type ContentBlock interface {
	BlockType() string
}

type OutputText struct {
	Text        string
	Annotations []Annotation
}

func (OutputText) BlockType() string { return "output_text" }

type UnknownBlock struct {
	Type string
}

func (u UnknownBlock) BlockType() string { return u.Type }

type Annotation interface {
	AnnotationType() string
}

// ContainerFileCitation points at a file written inside the container.
type ContainerFileCitation struct {
	ContainerID string
	FileID      string
	Filename    string
}

func (ContainerFileCitation) AnnotationType() string { return "container_file_citation" }

type UnknownAnnotation struct {
	Type string
}

func (u UnknownAnnotation) AnnotationType() string { return u.Type }

type wireResponse struct {
	ID     string            `json:"id"`
	Model  string            `json:"model"`
	Status string            `json:"status"`
	Output []json.RawMessage `json:"output"`
}

type wireItem struct {
	Type        string            `json:"type"`
	ID          string            `json:"id"`
	Role        string            `json:"role"`
	Status      string            `json:"status"`
	Code        string            `json:"code"`
	ContainerID string            `json:"container_id"`
	Content     []json.RawMessage `json:"content"`
}

type wireBlock struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []wireAnnote `json:"annotations"`
}

type wireAnnote struct {
	Type        string `json:"type"`
	ContainerID string `json:"container_id"`
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var w wireResponse
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "decode response")
	}
	out := Response{ID: w.ID, Model: w.Model, Status: w.Status}
	for i, raw := range w.Output {
		item, err := decodeItem(raw)
		if err != nil {
			return errors.Wrapf(err, "decode output item %d", i)
		}
		out.Output = append(out.Output, item)
	}
	*r = out
	return nil
}

func decodeItem(raw json.RawMessage) (OutputItem, error) {
	var w wireItem
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case "code_interpreter_call":
		return CodeInterpreterCall{ID: w.ID, Code: w.Code, ContainerID: w.ContainerID, Status: w.Status}, nil
	case "message":
		msg := MessageItem{ID: w.ID, Role: w.Role}
		for _, rb := range w.Content {
			block, err := decodeBlock(rb)
			if err != nil {
				return nil, err
			}
			msg.Content = append(msg.Content, block)
		}
		return msg, nil
	default:
		return UnknownItem{Type: w.Type}, nil
	}
}

func decodeBlock(raw json.RawMessage) (ContentBlock, error) {
	var w wireBlock
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.Type != "output_text" {
		return UnknownBlock{Type: w.Type}, nil
	}
	block := OutputText{Text: w.Text}
	for _, a := range w.Annotations {
		switch a.Type {
		case "container_file_citation":
			block.Annotations = append(block.Annotations, ContainerFileCitation{
				ContainerID: a.ContainerID,
				FileID:      a.FileID,
				Filename:    a.Filename,
			})
		default:
			block.Annotations = append(block.Annotations, UnknownAnnotation{Type: a.Type})
		}
	}
	return block, nil
}
