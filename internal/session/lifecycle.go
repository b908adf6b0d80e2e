package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"data-chatter/internal/apperr"
	"data-chatter/internal/llm"
)

// Provisioner creates the remote container of a session.
type Provisioner struct {
	files         llm.FileUploader
	containers    llm.ContainerCreator
	containerName string
}

func NewProvisioner(files llm.FileUploader, containers llm.ContainerCreator, containerName string) *Provisioner {
	return &Provisioner{files: files, containers: containers, containerName: containerName}
}

// EnsureContainer returns the session container, creating it from the
// session dataset on first use. The container is memoized per session, not
// per dataset. On failure the session is left without a container.
func (p *Provisioner) EnsureContainer(ctx context.Context, s *Session) (*Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	if s.dataset == nil {
		return nil, apperr.ErrNoDataset
	}

	fileID, err := p.files.UploadFile(ctx, s.dataset.Name, s.dataset.Data)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrContainerCreation, err, "upload dataset")
	}
	containerID, err := p.containers.CreateContainer(ctx, p.containerName, []string{fileID})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrContainerCreation, err, "create container")
	}

	s.container = &Container{ID: containerID, Tools: llm.DefaultTools(containerID)}
	log.Info().
		Str("session", s.ID).
		Str("file_id", fileID).
		Str("container_id", containerID).
		Msg("created container for code interpreter runs")
	return s.container, nil
}
