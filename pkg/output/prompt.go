package output

// RootPrompt is the glyph every prompt starts with.
const RootPrompt = "▲"

// RenderPrompt joins root and the non-empty segments, with a trailing space
// separating the prompt from user input.
func RenderPrompt(root string, segments []string) string {
	all := make([]string, 0, len(segments)+1)
	all = append(all, root)
	all = append(all, segments...)
	return JoinSegments(all) + " "
}
