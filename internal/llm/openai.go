package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"data-chatter/internal/apperr"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"

	purposeUserData openai.PurposeType = "user_data"
)

// OpenAIClient talks to the hosted API. File uploads go through go-openai;
// responses and containers have no go-openai binding and use plain JSON.
type OpenAIClient struct {
	client  *openai.Client
	http    *http.Client
	baseURL string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		cl.Header.Del(k)
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewOpenAI(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	h := http.Header{}
	h.Set("Authorization", "Bearer "+apiKey)
	hc := &http.Client{
		Timeout:   timeout,
		Transport: headerTransport{rt: http.DefaultTransport, headers: h},
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = hc
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(config),
		http:    hc,
		baseURL: baseURL,
	}
}

func (c *OpenAIClient) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	f, err := c.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   data,
		Purpose: purposeUserData,
	})
	if err != nil {
		return "", errors.Wrap(err, "upload file")
	}
	return f.ID, nil
}

type containerRequest struct {
	Name    string   `json:"name"`
	FileIDs []string `json:"file_ids"`
}

type containerObject struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (c *OpenAIClient) CreateContainer(ctx context.Context, name string, fileIDs []string) (string, error) {
	var out containerObject
	if err := c.postJSON(ctx, "/containers", containerRequest{Name: name, FileIDs: fileIDs}, &out); err != nil {
		return "", errors.Wrap(err, "create container")
	}
	if out.ID == "" {
		return "", errors.New("create container: empty container id")
	}
	return out.ID, nil
}

type responsePayload struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Tools        []Tool         `json:"tools,omitempty"`
	Input        []InputMessage `json:"input"`
	Temperature  float64        `json:"temperature"`
	Stream       bool           `json:"stream"`
}

func (c *OpenAIClient) CreateResponse(ctx context.Context, req ResponseRequest) (Response, error) {
	payload := responsePayload{
		Model:        req.Model,
		Instructions: req.Instructions,
		Tools:        req.Tools,
		Input:        req.Input,
		Temperature:  req.Temperature,
	}
	var out Response
	if err := c.postJSON(ctx, "/responses", payload, &out); err != nil {
		return Response{}, errors.Wrap(err, "create response")
	}
	return out, nil
}

// ContainerFileContent downloads raw file bytes. Any non-200 status is
// reported as *apperr.ArtifactFetchError.
func (c *OpenAIClient) ContainerFileContent(ctx context.Context, containerID, fileID string) ([]byte, error) {
	endpoint := c.baseURL + "/containers/" + url.PathEscape(containerID) + "/files/" + url.PathEscape(fileID) + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperr.ArtifactFetchError{FileID: fileID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.ArtifactFetchError{FileID: fileID, StatusCode: resp.StatusCode, Body: readErrorBody(resp)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.ArtifactFetchError{FileID: fileID, StatusCode: resp.StatusCode, Err: err}
	}
	return data, nil
}

func (c *OpenAIClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}
