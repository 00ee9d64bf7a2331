package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document so rewrites stay stable.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Parts is a Markdown document split at its `---` delimited front matter block.
type Parts struct {
	Raw   []byte // YAML without delimiters; nil when Had is false
	Body  []byte
	Had   bool
	Style Style
}

// Split separates YAML front matter from the Markdown body.
//
// Documents that do not start with `---` are returned whole as Body.
func Split(content []byte) (Parts, error) {
	style := detectStyle(content)
	nl := style.Newline
	delim := []byte("---" + nl)

	if !bytes.HasPrefix(content, delim) {
		return Parts{Body: content, Style: style}, nil
	}

	start := len(delim)
	if bytes.HasPrefix(content[start:], delim) {
		return Parts{Raw: []byte{}, Body: content[start+len(delim):], Had: true, Style: style}, nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closing)
	if idx < 0 {
		// A closing delimiter at EOF without trailing newline is still valid.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			return Parts{Raw: content[start : len(content)-len(tail)+len(nl)], Body: []byte{}, Had: true, Style: style}, nil
		}
		return Parts{Style: style}, ErrMissingClosingDelimiter
	}

	return Parts{
		Raw:   content[start : start+idx+len(nl)],
		Body:  content[start+idx+len(closing):],
		Had:   true,
		Style: style,
	}, nil
}

// Join reassembles a document from its parts. Without front matter the body is returned as-is.
func Join(p Parts) []byte {
	if !p.Had {
		return p.Body
	}
	nl := p.Style.Newline
	if nl == "" {
		nl = "\n"
	}
	var out bytes.Buffer
	out.Grow(len(p.Raw) + len(p.Body) + 2*(3+len(nl)))
	out.WriteString("---" + nl)
	out.Write(p.Raw)
	out.WriteString("---" + nl)
	out.Write(p.Body)
	return out.Bytes()
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
