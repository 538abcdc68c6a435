package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInterrupted is returned by a LineReader when the user pressed Ctrl+C
// at the prompt.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of input at a time.
type LineReader interface {
	// ReadLine returns the next line without its terminator. It returns
	// io.EOF at end of input and ErrInterrupted on Ctrl+C.
	ReadLine() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// TextReader reads lines from any io.Reader. It is used when stdin is not
// a terminal.
type TextReader struct {
	mu     sync.Mutex
	reader *bufio.Reader
	writer io.Writer
	prompt string
}

// NewTextReader reads from r and echoes prompts to w. w may be nil.
func NewTextReader(r io.Reader, w io.Writer) *TextReader {
	return &TextReader{reader: bufio.NewReader(r), writer: w}
}

// SetPrompt sets the text written before each read.
func (t *TextReader) SetPrompt(prompt string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompt = prompt
}

// ReadLine implements LineReader. A final line without a newline is
// returned before io.EOF.
func (t *TextReader) ReadLine() (string, error) {
	t.mu.Lock()
	prompt := t.prompt
	t.mu.Unlock()

	if t.writer != nil && prompt != "" {
		fmt.Fprint(t.writer, prompt)
	}

	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close implements LineReader.
func (t *TextReader) Close() error { return nil }
