package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-chatter/internal/apperr"
)

func newTestClient(t *testing.T, h http.Handler) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenAI("sk-test", srv.URL, 5*time.Second)
}

func TestUploadFile_SendsUserDataPurpose(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "user_data", r.FormValue("purpose"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "data.csv", hdr.Filename)
		assert.Equal(t, "a,b\n1,2\n", string(body))
		_, _ = io.WriteString(w, `{"id":"file-abc","object":"file","bytes":8,"filename":"data.csv","purpose":"user_data"}`)
	}))

	id, err := c.UploadFile(context.Background(), "data.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "file-abc", id)
}

func TestCreateContainer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/containers", r.URL.Path)
		var req containerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-container", req.Name)
		assert.Equal(t, []string{"file-abc"}, req.FileIDs)
		_, _ = io.WriteString(w, `{"id":"cntr_1","object":"container","name":"user-container","status":"running"}`)
	}))

	id, err := c.CreateContainer(context.Background(), "user-container", []string{"file-abc"})
	require.NoError(t, err)
	assert.Equal(t, "cntr_1", id)
}

func TestCreateResponse_PayloadAndDecode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "gpt-4o-mini", got["model"])
		assert.Equal(t, false, got["stream"])
		assert.Equal(t, 0.3, got["temperature"])
		assert.Equal(t, []any{
			map[string]any{"type": "web_search_preview"},
			map[string]any{"type": "code_interpreter", "container": "cntr_1"},
		}, got["tools"])
		assert.Equal(t, []any{
			map[string]any{"role": "system", "content": "ctx"},
			map[string]any{"role": "user", "content": "hi"},
		}, got["input"])
		_, _ = io.WriteString(w, `{"id":"resp_1","model":"gpt-4o-mini","status":"completed","output":[
			{"type":"code_interpreter_call","id":"ci_1","code":"df.mean()","container_id":"cntr_1"},
			{"type":"message","id":"msg_1","role":"assistant","content":[{"type":"output_text","text":"Done","annotations":[]}]}
		]}`)
	}))

	resp, err := c.CreateResponse(context.Background(), ResponseRequest{
		Model:       "gpt-4o-mini",
		Tools:       DefaultTools("cntr_1"),
		Input:       []InputMessage{{Role: "system", Content: "ctx"}, {Role: "user", Content: "hi"}},
		Temperature: 0.3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Output, 2)
	assert.Equal(t, CodeInterpreterCall{ID: "ci_1", Code: "df.mean()", ContainerID: "cntr_1"}, resp.Output[0])
}

func TestCreateResponse_ExpiredContainerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Container is expired.","type":"invalid_request_error","param":null,"code":null}}`)
	}))

	_, err := c.CreateResponse(context.Background(), ResponseRequest{Model: "m"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.True(t, IsContainerExpired(err))
}

func TestContainerFileContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/containers/cntr_1/files/cfile_1/content", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))

	data, err := c.ContainerFileContent(context.Background(), "cntr_1", "cfile_1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestContainerFileContent_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusNotFound)
	}))

	_, err := c.ContainerFileContent(context.Background(), "cntr_1", "f-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrArtifactFetch)
	var afe *apperr.ArtifactFetchError
	require.ErrorAs(t, err, &afe)
	assert.Equal(t, http.StatusNotFound, afe.StatusCode)
	assert.Equal(t, "no such file", afe.Body)
	assert.Equal(t, "f-123", afe.FileID)
}
