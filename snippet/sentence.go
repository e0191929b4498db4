package snippet

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Largest sentence the scanner accepts.
const maxSentenceLen = 1 << 20

// Sentences splits text into trimmed, non-empty sentences.
func Sentences(text string) []string {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), maxSentenceLen)
	scanner.Split(scanSentence)

	var out []string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			out = append(out, s)
		}
	}

	// A sentence longer than the buffer ends the scan; keep what is left as
	// a single sentence rather than losing it.
	if scanner.Err() != nil {
		consumed := 0
		for _, s := range out {
			consumed = strings.Index(text[consumed:], s) + consumed + len(s)
		}

		if rest := strings.TrimSpace(text[consumed:]); rest != "" {
			out = append(out, rest)
		}
	}

	return out
}

// scanSentence is a bufio.SplitFunc that breaks text after a '.', '!' or
// '?' preceded by a letter, symbol, digit or space and followed by
// punctuation, space, symbol, digit or an upper case letter. A single upper
// case letter before the terminator is an initial and does not end the
// sentence.
func scanSentence(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if n := sentenceEnd(data); n > 0 {
		return n, data[:n], nil
	}

	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// sentenceEnd returns the offset just past the first sentence terminator in
// data, or 0 when data holds no complete sentence yet.
func sentenceEnd(data []byte) int {
	var (
		prev        rune
		seq         [3]rune
		index, size int
	)

	for i := range seq {
		if seq[i], size = scanRune(data[index:]); size < 0 {
			return 0
		}

		index += size
	}

	for {
		if isSentenceEnd(prev, seq) {
			return index - size
		}

		if index >= len(data) {
			return 0
		}

		prev, seq[0], seq[1] = seq[0], seq[1], seq[2]
		if seq[2], size = scanRune(data[index:]); size < 0 {
			return 0
		}

		index += size
	}
}

// prev is the rune ahead of seq, or 0 at the start of data.
func isSentenceEnd(prev rune, seq [3]rune) bool {
	before := unicode.IsLower(seq[0]) || unicode.IsSymbol(seq[0]) ||
		unicode.IsNumber(seq[0]) || unicode.IsSpace(seq[0]) ||
		(unicode.IsUpper(seq[0]) && unicode.IsLetter(prev))

	terminator := seq[1] == '.' || seq[1] == '!' || seq[1] == '?'

	after := unicode.IsPunct(seq[2]) || unicode.IsSpace(seq[2]) ||
		unicode.IsSymbol(seq[2]) || unicode.IsNumber(seq[2]) ||
		unicode.IsUpper(seq[2])

	return before && terminator && after
}

// scanRune decodes the rune at the start of data. A negative size means
// more data is needed.
func scanRune(data []byte) (rune, int) {
	if len(data) == 0 {
		return 0, -1
	}

	if data[0] < utf8.RuneSelf {
		return rune(data[0]), 1
	}

	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError && size <= 1 {
		if !utf8.FullRune(data) {
			return 0, -1
		}

		// Invalid byte; step over it.
		return r, 1
	}

	return r, size
}
