package object

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/xerrors"
)

// ErrKVLMInvalid is returned when a key-value-list-with-message blob
// can't be parsed
var ErrKVLMInvalid = errors.New("invalid key-value-list-with-message data")

// kvlmPair is a single key/value entry of a KVLM. Keys may repeat
// (ex. several "parent" lines on a commit), so a KVLM is a list of
// pairs rather than a map.
type kvlmPair struct {
	key   string
	value string
}

// kvlm is an ordered multimap of repeatable string keys to string values,
// followed by a free-form message. It's the on-wire shape shared by both
// Commit and Tag objects:
//
//	key1 line1
//	 line2-continued
//	key2 value
//	<blank line>
//	message
//
// Multi-line values are folded on read (a continuation line starts with a
// single space, which is stripped and joined with "\n") and unfolded on
// write (every "\n" inside a value becomes "\n " so the next line is
// recognized as a continuation rather than a new key).
type kvlm struct {
	pairs   []kvlmPair
	message string
}

// newKVLM returns an empty kvlm
func newKVLM() *kvlm {
	return &kvlm{}
}

// add appends a new key/value pair, preserving insertion order and
// allowing the same key to appear more than once
func (k *kvlm) add(key, value string) {
	k.pairs = append(k.pairs, kvlmPair{key: key, value: value})
}

// get returns the value of the first pair matching key
func (k *kvlm) get(key string) (string, bool) {
	for _, p := range k.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// getAll returns the values of every pair matching key, in insertion order
func (k *kvlm) getAll(key string) []string {
	var out []string
	for _, p := range k.pairs {
		if p.key == key {
			out = append(out, p.value)
		}
	}
	return out
}

// parseKVLM parses the raw bytes of a commit/tag object into a kvlm
func parseKVLM(data []byte) (*kvlm, error) {
	k := newKVLM()

	lines := bytes.Split(data, []byte{'\n'})
	i := 0
	for i < len(lines) {
		line := lines[i]

		// A blank line marks the end of the key/value section; everything
		// after it (re-joined with "\n") is the message.
		if len(line) == 0 {
			k.message = string(bytes.Join(lines[i+1:], []byte{'\n'}))
			return k, nil
		}

		spaceIdx := bytes.IndexByte(line, ' ')
		if spaceIdx < 0 {
			return nil, xerrors.Errorf("line %d has no key/value separator: %w", i, ErrKVLMInvalid)
		}
		key := string(line[:spaceIdx])
		var value strings.Builder
		value.WriteString(string(line[spaceIdx+1:]))

		// Fold every following continuation line (one leading space) into
		// this value
		i++
		for i < len(lines) && len(lines[i]) > 0 && lines[i][0] == ' ' {
			value.WriteByte('\n')
			value.WriteString(string(lines[i][1:]))
			i++
		}

		k.add(key, value.String())
	}

	// No blank line found: the object has no message, which is valid
	// (ex. a tag with an empty body)
	return k, nil
}

// serialize writes the kvlm back to its wire format
func (k *kvlm) serialize() []byte {
	buf := new(bytes.Buffer)
	for _, p := range k.pairs {
		buf.WriteString(p.key)
		buf.WriteByte(' ')
		buf.WriteString(strings.ReplaceAll(p.value, "\n", "\n "))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(k.message)
	return buf.Bytes()
}
