// Package view defines a source-anchored token stream for rendering.
//
// The stream is the unit handed from the buffer to layout: plain text and
// newline tokens anchor back to byte offsets in the source, while injected
// tokens (virtual text, style spans, overlays) carry no source offset.
// Plugins may transform a stream before layout; the source map survives the
// transformation so hit-testing and cursor positioning keep working.
package view

import "github.com/dshills/hugefile/internal/engine/vfile"

// TokenKind discriminates the token variants in a stream.
type TokenKind int

const (
	// KindText is a plain text slice present in the source.
	KindText TokenKind = iota
	// KindNewline is a line terminator present in the source.
	KindNewline
	// KindVirtualText is injected text that has no source bytes.
	KindVirtualText
	// KindStyleStart opens a style span.
	KindStyleStart
	// KindStyleEnd closes the innermost style span.
	KindStyleEnd
	// KindOverlay is a decoration span over the following tokens.
	KindOverlay
)

// VirtualPosition says where injected text sits relative to its anchor.
type VirtualPosition int

const (
	VirtualInline VirtualPosition = iota
	VirtualAbove
	VirtualBelow
	VirtualEndOfLine
)

// Token is one element of a view stream.
type Token struct {
	// Kind discriminates which of the remaining fields are meaningful.
	Kind TokenKind
	// Text is the token's text for KindText and KindVirtualText.
	Text string
	// Style names the style for KindStyleStart and KindOverlay.
	Style string
	// Position places virtual text relative to its anchor.
	Position VirtualPosition
	// Priority orders virtual text competing for the same anchor.
	Priority int

	// sourceOffset is the byte offset in the source, when the token has one.
	sourceOffset uint64
	hasSource    bool
}

// SourceOffset returns the token's source byte offset. ok is false for
// injected tokens.
func (t Token) SourceOffset() (offset uint64, ok bool) {
	return t.sourceOffset, t.hasSource
}

// Text builds a source-anchored text token.
func Text(text string, offset uint64) Token {
	return Token{Kind: KindText, Text: text, sourceOffset: offset, hasSource: true}
}

// Newline builds a source-anchored terminator token.
func Newline(offset uint64) Token {
	return Token{Kind: KindNewline, sourceOffset: offset, hasSource: true}
}

// VirtualText builds an injected text token with no source bytes.
func VirtualText(text, style string, pos VirtualPosition, priority int) Token {
	return Token{Kind: KindVirtualText, Text: text, Style: style, Position: pos, Priority: priority}
}

// Stream is a sequence of tokens for one viewport.
type Stream struct {
	tokens []Token
}

// NewStream returns an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Push appends a token.
func (s *Stream) Push(tok Token) {
	s.tokens = append(s.tokens, tok)
}

// Len returns the number of tokens.
func (s *Stream) Len() int { return len(s.tokens) }

// Token returns the token at index.
func (s *Stream) Token(index int) Token { return s.tokens[index] }

// Tokens returns the underlying token slice. Callers transform streams in
// place; the slice is not a copy.
func (s *Stream) Tokens() []Token { return s.tokens }

// HitTest maps a token index back to a source byte offset. Injected tokens
// resolve to the nearest preceding source-anchored token, so a cursor landing
// on virtual text snaps to the real bytes before it. ok is false when no
// token at or before index is source-anchored.
func (s *Stream) HitTest(index int) (offset uint64, ok bool) {
	if index >= len(s.tokens) {
		index = len(s.tokens) - 1
	}
	for ; index >= 0; index-- {
		if off, has := s.tokens[index].SourceOffset(); has {
			return off, true
		}
	}
	return 0, false
}

// FromLines builds a stream from buffer lines: one text token per line
// anchored at the line's offset, and a newline token for each terminated
// line anchored at the terminator byte. Fragments contribute their text
// as-is.
func FromLines(lines []vfile.Line) *Stream {
	s := NewStream()
	for _, ln := range lines {
		if ln.Text() != "" {
			s.Push(Text(ln.Text(), ln.Offset()))
		}
		if ln.Terminated() {
			s.Push(Newline(ln.Offset() + uint64(len(ln.Text()))))
		}
	}
	return s
}
