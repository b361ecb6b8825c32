package link

// label.go - transition label codec.
//
// A FlexFringe transition label has two lines:
//
//	[in__|out__]port__path__status__method__source__target
//	<frequency>
//
// path encodes "/" as ">" and ":" as "-".

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction tokens that may prefix a label.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Label is a decoded transition label.
type Label struct {
	Direction string
	Port      string
	Path      string // encoded form, as found in the label
	Status    string
	Method    string
	Source    string
	Target    string
	Frequency int
}

// FirstLine returns the call information line of a raw label.
func FirstLine(raw string) string {
	line, _, _ := strings.Cut(raw, "\n")
	return strings.TrimSpace(line)
}

// fields returns the "__" fields of the first line and the optional
// direction token that preceded them.
func fields(raw string) (direction string, fs []string) {
	fs = strings.Split(FirstLine(raw), TokenSep)
	if len(fs) > 0 && (fs[0] == DirectionIn || fs[0] == DirectionOut) {
		return fs[0], fs[1:]
	}
	return "", fs
}

// DecodeTransition extracts the link a transition label describes. The last
// two fields are the components; their hyphens are rewritten to underscores.
func DecodeTransition(raw string) (Link, error) {
	_, fs := fields(raw)
	if len(fs) < 2 {
		return Link{}, fmt.Errorf("decode %q: %w", FirstLine(raw), ErrShortLabel)
	}
	return Link{
		Source: Normalize(fs[len(fs)-2]),
		Target: Normalize(fs[len(fs)-1]),
	}, nil
}

// DecodeToken returns the "source__target" token of a transition label.
func DecodeToken(raw string) (string, error) {
	l, err := DecodeTransition(raw)
	if err != nil {
		return "", err
	}
	return l.Token(), nil
}

// Detail returns the "port__path" call detail of a label with the path's
// "/" separators restored.
func Detail(raw string) (string, error) {
	_, fs := fields(raw)
	if len(fs) < 2 {
		return "", fmt.Errorf("detail %q: %w", FirstLine(raw), ErrShortLabel)
	}
	return fs[0] + TokenSep + strings.ReplaceAll(fs[1], ">", "/"), nil
}

// Frequency parses the second line of a raw label.
func Frequency(raw string) (int, error) {
	_, rest, ok := strings.Cut(raw, "\n")
	if !ok {
		return 0, fmt.Errorf("label %q has no frequency line", FirstLine(raw))
	}
	line, _, _ := strings.Cut(rest, "\n")
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("label %q: frequency: %w", FirstLine(raw), err)
	}
	return n, nil
}

// ParseLabel decodes a full seven-field label. Labels with fewer fields
// fill what they can from the right, so Source and Target are always set
// when DecodeTransition would succeed. A missing frequency line leaves
// Frequency at zero.
func ParseLabel(raw string) (Label, error) {
	dir, fs := fields(raw)
	if len(fs) < 2 {
		return Label{}, fmt.Errorf("parse %q: %w", FirstLine(raw), ErrShortLabel)
	}
	lb := Label{
		Direction: dir,
		Source:    fs[len(fs)-2],
		Target:    fs[len(fs)-1],
	}
	if len(fs) >= 6 {
		lb.Port, lb.Path, lb.Status, lb.Method = fs[0], fs[1], fs[2], fs[3]
	}
	if n, err := Frequency(raw); err == nil {
		lb.Frequency = n
	}
	return lb, nil
}

// DecodedPath returns the request path with "/" and ":" restored.
func (lb Label) DecodedPath() string { return DecodePath(lb.Path) }

// Link returns the normalized link the label describes.
func (lb Label) Link() Link {
	return Link{Source: Normalize(lb.Source), Target: Normalize(lb.Target)}
}

// EncodePath applies the label encoding to a URL path.
func EncodePath(p string) string {
	return strings.NewReplacer("/", ">", ":", "-").Replace(p)
}

// DecodePath reverses EncodePath. Hyphens that were present in the original
// path are indistinguishable from encoded colons and come back as ":".
func DecodePath(p string) string {
	return strings.NewReplacer(">", "/", "-", ":").Replace(p)
}
