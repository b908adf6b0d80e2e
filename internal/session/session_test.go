package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-chatter/internal/apperr"
	"data-chatter/internal/history"
	"data-chatter/internal/llm"
)

type fakeRemote struct {
	uploads    []string
	containers [][]string
	uploadErr  error
	createErr  error
}

func (f *fakeRemote) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, name)
	return "file-" + name, nil
}

func (f *fakeRemote) CreateContainer(ctx context.Context, name string, fileIDs []string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.containers = append(f.containers, fileIDs)
	return "cntr_" + name, nil
}

func TestEnsureContainer_CreatesOnceAndMemoizes(t *testing.T) {
	remote := &fakeRemote{}
	p := NewProvisioner(remote, remote, "user-container")
	s := New(Settings{Model: "gpt-4o-mini"})
	s.SetDataset(Dataset{Name: "ph.csv", Data: []byte("ph\n7.2\n")})

	first, err := p.EnsureContainer(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "cntr_user-container", first.ID)
	assert.Equal(t, []llm.Tool{llm.WebSearchTool{}, llm.CodeInterpreterTool{ContainerID: "cntr_user-container"}}, first.Tools)
	assert.Equal(t, [][]string{{"file-ph.csv"}}, remote.containers)

	second, err := p.EnsureContainer(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, remote.uploads, 1)
	assert.Len(t, remote.containers, 1)
}

func TestEnsureContainer_SecondDatasetReusesContainer(t *testing.T) {
	remote := &fakeRemote{}
	p := NewProvisioner(remote, remote, "c")
	s := New(Settings{})
	s.SetDataset(Dataset{Name: "a.csv"})
	_, err := p.EnsureContainer(context.Background(), s)
	require.NoError(t, err)

	s.SetDataset(Dataset{Name: "b.csv"})
	_, err = p.EnsureContainer(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, remote.uploads)

	s.DropContainer()
	_, err = p.EnsureContainer(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, remote.uploads)
}

func TestEnsureContainer_NoDataset(t *testing.T) {
	remote := &fakeRemote{}
	p := NewProvisioner(remote, remote, "c")
	s := New(Settings{})

	_, err := p.EnsureContainer(context.Background(), s)
	assert.ErrorIs(t, err, apperr.ErrNoDataset)
	assert.Empty(t, remote.uploads)
}

func TestEnsureContainer_FailureLeavesNoContainer(t *testing.T) {
	cases := []struct {
		name   string
		remote *fakeRemote
	}{
		{"upload", &fakeRemote{uploadErr: errors.New("connection refused")}},
		{"create", &fakeRemote{createErr: errors.New("503 service unavailable")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProvisioner(tc.remote, tc.remote, "c")
			s := New(Settings{})
			s.SetDataset(Dataset{Name: "a.csv"})

			_, err := p.EnsureContainer(context.Background(), s)
			assert.ErrorIs(t, err, apperr.ErrContainerCreation)
			assert.Nil(t, s.Container())
		})
	}
}

func TestSessionReset(t *testing.T) {
	s := New(Settings{})
	s.Log.Append(history.UserText("hi"))
	s.Artifacts.Put("f-1", []byte("x"))
	s.container = &Container{ID: "cntr_1"}

	s.Reset()
	assert.Equal(t, 0, s.Log.Len())
	assert.Equal(t, 0, s.Artifacts.Len())
	assert.NotNil(t, s.Container())
}

func TestRegistryIsolationAndEviction(t *testing.T) {
	now := time.Unix(1000, 0)
	r := NewRegistry(Settings{Model: "gpt-4o-mini", Temperature: 0.2})
	r.now = func() time.Time { return now }

	a := r.Get(1)
	b := r.Get(2)
	assert.NotSame(t, a, b)
	assert.Same(t, a, r.Get(1))
	assert.Equal(t, Settings{Model: "gpt-4o-mini", Temperature: 0.2}, a.Settings())

	a.SetModel("gpt-4.1")
	assert.Equal(t, "gpt-4o-mini", b.Settings().Model)

	now = now.Add(30 * time.Minute)
	r.Get(2)
	now = now.Add(40 * time.Minute)

	assert.Equal(t, 1, r.EvictIdle(time.Hour))
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Get(1))
}

func TestRegistryKeepsSessionDuringTurn(t *testing.T) {
	now := time.Unix(1000, 0)
	r := NewRegistry(Settings{})
	r.now = func() time.Time { return now }

	s, done := r.Begin(7)
	s.SetDataset(Dataset{Name: "soil.csv"})
	now = now.Add(2 * time.Hour)

	assert.Equal(t, 0, r.EvictIdle(time.Hour))
	assert.Same(t, s, r.Get(7))

	now = now.Add(2 * time.Hour)
	done()
	now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, r.EvictIdle(time.Hour))
	require.NotNil(t, r.Get(7).Dataset())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, r.EvictIdle(time.Hour))
	assert.Equal(t, 0, r.Len())
}
