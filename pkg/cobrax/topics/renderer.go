package topics

// Renderer formats topic content for the terminal
type Renderer interface {
	// Render formats content; format is the topic file extension
	Render(content string, format string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
