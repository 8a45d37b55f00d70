package source

import (
	"bufio"
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// File represents a source file split into lines
type File struct {
	Path  string
	Lines []Line
}

// Line represents a single physical line, without its terminator
type Line struct {
	Number int
	Text   string
}

// Parse splits raw bytes into numbered lines.
// Both "\n" and "\r\n" terminators are stripped and every line is
// NFC-normalized so composed and decomposed text measure the same.
func Parse(path string, data []byte) (*File, error) {
	f := &File{
		Path:  path,
		Lines: []Line{},
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// A single line may be as long as the whole file.
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		f.Lines = append(f.Lines, Line{
			Number: lineNum,
			Text:   norm.NFC.String(scanner.Text()),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f, nil
}

// Text joins the lines back together with "\n"
func (f *File) Text() string {
	var b strings.Builder
	for i, l := range f.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

// Tokens lexes the file contents
func (f *File) Tokens() ([]Token, []Problem) {
	return Tokenize(f.Text())
}
