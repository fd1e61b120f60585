package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngExifChunk returns the payload of the eXIf chunk, a bare TIFF
// stream that exif.Decode accepts directly.
func pngExifChunk(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG stream")
	}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		kind := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			return nil, fmt.Errorf("truncated %q chunk", kind)
		}
		switch kind {
		case "eXIf":
			return data[start:end], nil
		case "IEND":
			return nil, fmt.Errorf("%w: PNG has no eXIf chunk", ErrNoExif)
		}
		pos = end + 4
	}
	return nil, fmt.Errorf("%w: PNG has no eXIf chunk", ErrNoExif)
}
