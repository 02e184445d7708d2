package protocol

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Frames on stream transports are [u32 big-endian length][json bytes].

const MaxFrameSize = 1 << 20

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

func Marshal(p *Package) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s package", p.Type)
	}
	return data, nil
}

func Unmarshal(data []byte) (*Package, error) {
	var p Package
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding package")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid package")
	}
	return &p, nil
}

func WriteFrame(w io.Writer, p *Package) error {
	body, err := Marshal(p)
	if err != nil {
		return err
	}
	if len(body) > MaxFrameSize {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(body))
	}
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	_, err = w.Write(frame)
	return err
}

func ReadFrame(r io.Reader) (*Package, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "reading frame body")
	}
	return Unmarshal(body)
}
