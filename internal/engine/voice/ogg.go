package voice

import (
	"bufio"
	"errors"
	"io"
)

var errNoOpusHead = errors.New("stream has no opus header")

type oggPage struct {
	isHeader bool
	packets  [][]byte
}

// oggReader splits an Ogg/Opus byte stream into pages and Opus packets.
type oggReader struct {
	r *bufio.Reader
}

func newOggReader(r io.Reader) *oggReader {
	return &oggReader{r: bufio.NewReaderSize(r, 65536)}
}

// ReadPage returns the next page. Garbage before a capture pattern is skipped.
func (o *oggReader) ReadPage() (*oggPage, error) {
	if err := o.syncToPage(); err != nil {
		return nil, err
	}

	// version(1) type(1) granule(8) serial(4) sequence(4) crc(4) segments(1)
	header := make([]byte, 23)
	if _, err := io.ReadFull(o.r, header); err != nil {
		return nil, err
	}

	headerType := header[1]
	segmentTable := make([]byte, header[22])
	if _, err := io.ReadFull(o.r, segmentTable); err != nil {
		return nil, err
	}

	pageSize := 0
	for _, seg := range segmentTable {
		pageSize += int(seg)
	}

	pageData := make([]byte, pageSize)
	if _, err := io.ReadFull(o.r, pageData); err != nil {
		return nil, err
	}

	isHeader := headerType&0x02 != 0
	if len(pageData) >= 8 {
		magic := string(pageData[:8])
		if magic == "OpusHead" || magic == "OpusTags" {
			isHeader = true
		}
	}

	return &oggPage{
		isHeader: isHeader,
		packets:  extractPackets(segmentTable, pageData),
	}, nil
}

// WaitForHead consumes pages until the OpusHead page. Anything that is not an
// Opus stream fails here instead of later in the sender.
func (o *oggReader) WaitForHead() error {
	for {
		page, err := o.ReadPage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return errNoOpusHead
			}
			return err
		}
		if !page.isHeader {
			return errNoOpusHead
		}
		for _, packet := range page.packets {
			if len(packet) >= 8 && string(packet[:8]) == "OpusHead" {
				return nil
			}
		}
	}
}

func (o *oggReader) syncToPage() error {
	for {
		b, err := o.r.ReadByte()
		if err != nil {
			return err
		}
		if b != 'O' {
			continue
		}

		peek, err := o.r.Peek(3)
		if err != nil {
			return err
		}
		if string(peek) == "ggS" {
			_, _ = o.r.Discard(3)
			return nil
		}
	}
}

// A segment shorter than 255 bytes ends a packet. A packet that is still open
// at the end of the page is returned as is.
func extractPackets(segmentTable []byte, pageData []byte) [][]byte {
	var packets [][]byte
	var current []byte
	offset := 0

	for _, segSize := range segmentTable {
		size := int(segSize)
		if offset+size > len(pageData) {
			break
		}

		current = append(current, pageData[offset:offset+size]...)
		offset += size

		if segSize < 255 && len(current) > 0 {
			packets = append(packets, append([]byte(nil), current...))
			current = current[:0]
		}
	}

	if len(current) > 0 {
		packets = append(packets, append([]byte(nil), current...))
	}

	return packets
}
