package configfs

import (
	"bytes"
	"fmt"
)

// writeChunkSize bounds how much of a write is scanned at once. Inputs
// larger than this are processed in slices, with an explicit carry buffer
// preserving any token split across the boundary.
const writeChunkSize = 1024

// ingest tokenizes p as comma separated values and appends each parsed value
// to the entry's store. Caller holds the registry lock and has already
// enforced the activation gate.
//
// Tokenization rules:
//   - tokens are split on ',' and trimmed of leading/trailing whitespace
//   - an all-whitespace token is silently skipped
//   - a token left open at a chunk boundary is carried forward intact and
//     prepended to the next chunk before scanning resumes
//   - a trailing unterminated token at end of input is the final token
//   - a parse failure aborts the call with ErrInvalidInput; values appended
//     by earlier tokens of the same call stay in place
//
// On success the returned count equals len(p). On failure it is the number
// of bytes consumed before the failing token started.
func ingest(e *Entry, p []byte) (int, error) {
	var carry []byte
	tokenStart := 0

	flush := func(tok []byte) error {
		trimmed := string(bytes.TrimSpace(tok))
		if trimmed == "" {
			return nil
		}
		v, err := e.param.Ops.Parse(trimmed)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		e.store.Append(v)
		return nil
	}

	for off := 0; ; {
		end := off + writeChunkSize
		if end > len(p) {
			end = len(p)
		}
		chunk := p[off:end]
		last := end == len(p)

		start := 0
		for i, b := range chunk {
			if b != ',' {
				continue
			}
			tok := append(carry, chunk[start:i]...)
			carry = nil
			if err := flush(tok); err != nil {
				return tokenStart, err
			}
			start = i + 1
			tokenStart = off + i + 1
		}

		// Whatever is left of the chunk belongs to a token that has not
		// seen its comma yet. Keep it; the next chunk continues it.
		carry = append(carry, chunk[start:]...)

		if last {
			if err := flush(carry); err != nil {
				return tokenStart, err
			}
			return len(p), nil
		}
		off = end
	}
}
