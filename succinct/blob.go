package succinct

import (
	"fmt"
	"io"
)

// Tagged blob framing. Every persisted structure is written as
//
//   - tag_u8
//   - payloadLen_le8
//   - payload
//
// The tag identifies the owning component in the index serialization order;
// the length makes every blob skippable without decoding. Rank/select views
// are written as zero-length blobs: the tag keeps its slot in the stream and
// the view is rebuilt against the parent vector after decode.

// WriteBlob frames payload under tag and writes it to w.
func WriteBlob(w io.Writer, tag byte, payload []byte) error {
	var hdr [9]byte
	hdr[0] = tag
	writeU64LE(hdr[1:], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadBlob reads one framed blob from r and checks it carries wantTag.
func ReadBlob(r io.Reader, wantTag byte) ([]byte, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != wantTag {
		return nil, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrBadBlobTag, hdr[0], wantTag)
	}
	n := readU64LE(hdr[1:])
	if n == 0 {
		return nil, nil
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
