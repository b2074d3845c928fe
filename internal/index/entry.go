package index

import "strings"

// Complexity summarizes the size of a component bundle.
type Complexity struct {
	Files                int `json:"files"`
	Lines                int `json:"lines"`
	Dependencies         int `json:"dependencies"`
	RegistryDependencies int `json:"registryDependencies"`
}

// Entry is one component in the browser index.
type Entry struct {
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Tags           []string   `json:"tags"`
	Complexity     Complexity `json:"complexity"`
	ContentHash    string     `json:"contentHash"`
	LastModified   string     `json:"lastModified,omitempty"`
	PeerComponents []string   `json:"peerComponents"`
}

// ItemURL returns the registry-relative URL of a component.
func ItemURL(name string) string {
	return "/r/" + name + ".json"
}

// CountLines returns the number of lines in content. A trailing newline does
// not start a new line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
