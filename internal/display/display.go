// Package display defines the normalized elements a reply is rendered from.
package display

// Element is one displayable piece of a turn. The set of implementations is
// closed: Text, Code and Image.
type Element interface {
	Kind() string
	isElement()
}

// Text is markdown-ish prose.
type Text struct {
	Content string
}

func (Text) Kind() string { return "text" }
func (Text) isElement()   {}

// Code is source that was executed in the remote container.
type Code struct {
	Content  string
	Language string
}

func (Code) Kind() string { return "code" }
func (Code) isElement()   {}

// Image references an artifact held in the session's artifact store.
type Image struct {
	Filename   string
	ArtifactID string
}

func (Image) Kind() string { return "image" }
func (Image) isElement()   {}

// Texts returns the content of every Text element in order.
func Texts(elems []Element) []string {
	var out []string
	for _, e := range elems {
		if t, ok := e.(Text); ok {
			out = append(out, t.Content)
		}
	}
	return out
}
