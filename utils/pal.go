package utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/image/riff"

	"github.com/setanarut/colorquant"
)

var (
	palForm   = riff.FourCC{'P', 'A', 'L', ' '}
	dataChunk = riff.FourCC{'d', 'a', 't', 'a'}
)

// WritePAL stores a palette as a Microsoft RIFF PAL file (LOGPALETTE
// version 0x0300). The format carries RGB plus a flags byte; alpha is not
// representable and is dropped.
func WritePAL(w io.Writer, palette []colorquant.Color) error {
	if len(palette) == 0 {
		return fmt.Errorf("could not write PAL: empty palette")
	}

	size := 16 + 4*len(palette)
	out := make([]byte, 0, 8+size)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(size))
	out = append(out, "PAL "...)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4+4*len(palette)))
	out = append(out, 0x00, 0x03) // LOGPALETTE version 0x0300
	out = binary.LittleEndian.AppendUint16(out, uint16(len(palette)))
	for _, c := range palette {
		out = append(out, c.R, c.G, c.B, 0x00)
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("could not write PAL stream: %w", err)
	}
	return nil
}

// ReadPAL loads the first palette of a RIFF PAL stream. Entries come back
// fully opaque since the format stores no alpha.
func ReadPAL(r io.Reader) ([]colorquant.Color, error) {
	form, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	}
	if form != palForm {
		return nil, fmt.Errorf("not a PAL file: form type %q", form[:])
	}

	for {
		id, size, data, err := rd.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("PAL stream has no data chunk")
		}
		if err != nil {
			return nil, fmt.Errorf("could not read RIFF chunk: %w", err)
		}
		if id != dataChunk {
			continue
		}
		return readPalEntries(data, size)
	}
}

func readPalEntries(r io.Reader, size uint32) ([]colorquant.Color, error) {
	if size < 4 {
		return nil, fmt.Errorf("PAL data chunk too short: %d bytes", size)
	}
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("could not read LOGPALETTE header: %w", err)
	}
	if ver := binary.LittleEndian.Uint16(header[:2]); ver != 0x0300 {
		return nil, fmt.Errorf("unsupported palette version 0x%04x", ver)
	}

	count := int(binary.LittleEndian.Uint16(header[2:]))
	palette := make([]colorquant.Color, 0, count)
	entry := make([]byte, 4)
	for i := range count {
		if _, err := io.ReadFull(r, entry); err != nil {
			return nil, fmt.Errorf("could not read palette entry %d/%d: %w", i, count, err)
		}
		palette = append(palette, colorquant.Color{R: entry[0], G: entry[1], B: entry[2], A: 255})
	}
	return palette, nil
}

// WritePALFile writes palette to a .pal file at path.
func WritePALFile(palette []colorquant.Color, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	defer f.Close()
	return WritePAL(f, palette)
}

// ReadPALFile loads a palette from the .pal file at path.
func ReadPALFile(path string) ([]colorquant.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	return ReadPAL(f)
}
