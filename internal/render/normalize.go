// Package render turns hosted responses into display elements.
package render

import (
	"context"

	"github.com/rs/zerolog/log"

	"data-chatter/internal/apperr"
	"data-chatter/internal/artifact"
	"data-chatter/internal/display"
	"data-chatter/internal/llm"
)

// CodeLanguage is the language of code run by the code interpreter.
const CodeLanguage = "python"

type Normalizer struct {
	fetcher llm.ContainerFileFetcher
}

func NewNormalizer(fetcher llm.ContainerFileFetcher) *Normalizer {
	return &Normalizer{fetcher: fetcher}
}

// Normalize converts resp into display elements in output order. Images
// cited by the response are resolved into store from containerID unless
// already present. On a failed resolution the elements produced so far are
// returned together with the error; the image that failed is not among them.
func (n *Normalizer) Normalize(ctx context.Context, resp llm.Response, store *artifact.Store, containerID string) ([]display.Element, error) {
	var out []display.Element
	for _, item := range resp.Output {
		switch it := item.(type) {
		case llm.CodeInterpreterCall:
			out = append(out, display.Code{Content: it.Code, Language: CodeLanguage})
		case llm.MessageItem:
			for _, block := range it.Content {
				text, ok := block.(llm.OutputText)
				if !ok {
					continue
				}
				out = append(out, display.Text{Content: text.Text})
				for _, ann := range text.Annotations {
					cite, ok := ann.(llm.ContainerFileCitation)
					if !ok {
						continue
					}
					if err := n.resolve(ctx, store, containerID, cite.FileID); err != nil {
						return out, err
					}
					out = append(out, display.Image{Filename: cite.Filename, ArtifactID: cite.FileID})
				}
			}
		default:
			log.Debug().Str("type", item.ItemType()).Msg("skipping output item")
		}
	}
	return out, nil
}

func (n *Normalizer) resolve(ctx context.Context, store *artifact.Store, containerID, fileID string) error {
	if store.Has(fileID) {
		return nil
	}
	raw, err := n.fetcher.ContainerFileContent(ctx, containerID, fileID)
	if err != nil {
		return apperr.Wrap(apperr.ErrArtifactFetch, err, "fetch artifact "+fileID)
	}
	png, format, err := artifact.Canonicalize(raw)
	if err != nil {
		return apperr.Wrap(apperr.ErrArtifactFetch, err, "canonicalize artifact "+fileID)
	}
	store.Put(fileID, png)
	log.Info().Str("file_id", fileID).Str("format", format).Int("bytes", len(png)).Msg("artifact stored")
	return nil
}
