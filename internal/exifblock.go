package internal

import (
    "bufio"
    "bytes"
    "encoding/binary"
    "errors"
    "fmt"
    "io"
)

// The readers below cut the raw TIFF-structured EXIF block out of each
// container so it can be bounds-checked before goexif sees it.

var (
    errNoJPEGExif = errors.New("jpeg: no Exif APP1 segment")
    errNoPNGExif  = errors.New("png: no eXIf chunk")
)

var (
    jpegExifHeader = []byte("Exif\x00\x00")
    pngSignature   = []byte("\x89PNG\r\n\x1a\n")
)

// maxPNGChunk is the largest chunk length the PNG format allows.
const maxPNGChunk = 1<<31 - 1

// shortRead maps running out of input to notFound; anything else is an I/O
// failure.
func shortRead(err, notFound error) error {
    if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
        return notFound
    }
    return ioFailure{err}
}

// readJPEGExif walks the JPEG segments up to the start of scan and returns
// the payload of the first APP1 segment carrying an Exif header.
func readJPEGExif(r io.Reader) ([]byte, error) {
    br := bufio.NewReader(r)
    var soi [2]byte
    if _, err := io.ReadFull(br, soi[:]); err != nil {
        return nil, shortRead(err, errNoJPEGExif)
    }
    if soi != [2]byte{0xFF, 0xD8} {
        return nil, errors.New("jpeg: missing SOI marker")
    }

    for {
        marker, err := nextJPEGMarker(br)
        if err != nil {
            return nil, shortRead(err, errNoJPEGExif)
        }
        switch {
        case marker == 0xDA || marker == 0xD9: // SOS, EOI
            return nil, errNoJPEGExif
        case marker == 0x01 || marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD7):
            continue // no length field
        }

        var lenBuf [2]byte
        if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
            return nil, shortRead(err, errNoJPEGExif)
        }
        n := int(binary.BigEndian.Uint16(lenBuf[:])) - 2
        if n < 0 {
            return nil, fmt.Errorf("jpeg: segment 0x%02X has bad length %d", marker, n+2)
        }

        if marker != 0xE1 {
            if _, err := br.Discard(n); err != nil {
                return nil, shortRead(err, errNoJPEGExif)
            }
            continue
        }
        seg := make([]byte, n)
        if _, err := io.ReadFull(br, seg); err != nil {
            return nil, shortRead(err, errNoJPEGExif)
        }
        // APP1 is also used for XMP
        if bytes.HasPrefix(seg, jpegExifHeader) {
            return seg[len(jpegExifHeader):], nil
        }
    }
}

// nextJPEGMarker skips to the next 0xFF and returns the marker byte after
// any fill bytes. Stray bytes between segments are ignored.
func nextJPEGMarker(br *bufio.Reader) (byte, error) {
    for {
        if _, err := br.ReadBytes(0xFF); err != nil {
            return 0, err
        }
        c, err := br.ReadByte()
        for err == nil && c == 0xFF {
            c, err = br.ReadByte()
        }
        if err != nil {
            return 0, err
        }
        if c != 0x00 {
            return c, nil
        }
    }
}

// readPNGExif walks the chunk list and returns the raw TIFF payload of the
// eXIf chunk. Chunk CRCs are not verified.
func readPNGExif(r io.Reader) ([]byte, error) {
    sig := make([]byte, len(pngSignature))
    if _, err := io.ReadFull(r, sig); err != nil {
        return nil, fmt.Errorf("png: reading signature: %w", err)
    }
    if !bytes.Equal(sig, pngSignature) {
        return nil, errors.New("png: bad signature")
    }

    var hdr [8]byte
    for {
        if _, err := io.ReadFull(r, hdr[:]); err != nil {
            return nil, shortRead(err, errNoPNGExif)
        }
        length := binary.BigEndian.Uint32(hdr[:4])
        if length > maxPNGChunk {
            return nil, fmt.Errorf("png: chunk %q too large (%d bytes)", hdr[4:], length)
        }
        switch string(hdr[4:]) {
        case "eXIf":
            // grows with the bytes actually present, not the declared length
            var payload bytes.Buffer
            if _, err := io.CopyN(&payload, r, int64(length)); err != nil {
                return nil, fmt.Errorf("png: reading eXIf: %w", err)
            }
            return payload.Bytes(), nil
        case "IEND":
            return nil, errNoPNGExif
        }
        // chunk data + CRC
        if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
            return nil, shortRead(err, errNoPNGExif)
        }
    }
}

// readTIFF returns a whole TIFF file; its IFDs may sit anywhere in it.
func readTIFF(r io.Reader) ([]byte, error) {
    data, err := io.ReadAll(r)
    if err != nil {
        return nil, ioFailure{err}
    }
    return data, nil
}

// tiffTypeSize is the byte size of one value of each TIFF field type 1-12.
var tiffTypeSize = [...]uint64{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags whose value is the offset of a further IFD that goexif follows.
var tiffSubIFDTags = map[uint16]bool{
    0x8769: true, // Exif
    0x8825: true, // GPS
    0xA005: true, // Interoperability
}

// maxTIFFDirs bounds how many IFDs one block may chain together.
const maxTIFFDirs = 64

// checkTIFFBounds walks every IFD goexif would decode and rejects the block
// if an entry declares more values than the whole block could hold, or if
// the IFD chain loops or runs off the end. goexif sizes its buffers from
// those counts without such checks.
func checkTIFFBounds(block []byte) error {
    if len(block) < 8 {
        return errors.New("tiff: block too short for a header")
    }
    var order binary.ByteOrder
    switch string(block[:2]) {
    case "II":
        order = binary.LittleEndian
    case "MM":
        order = binary.BigEndian
    default:
        return errors.New("tiff: bad byte order mark")
    }
    if order.Uint16(block[2:4]) != 42 {
        return errors.New("tiff: missing 42 marker")
    }

    size := uint64(len(block))
    seen := make(map[uint32]bool)
    pending := []uint32{order.Uint32(block[4:8])}
    for len(pending) > 0 {
        off := pending[len(pending)-1]
        pending = pending[:len(pending)-1]
        if off == 0 {
            continue
        }
        if seen[off] {
            return fmt.Errorf("tiff: IFD at offset %d is referenced twice", off)
        }
        if len(seen) == maxTIFFDirs {
            return fmt.Errorf("tiff: more than %d IFDs", maxTIFFDirs)
        }
        seen[off] = true

        start := uint64(off)
        if start+2 > size {
            return fmt.Errorf("tiff: IFD offset %d out of range", off)
        }
        n := uint64(order.Uint16(block[start:]))
        next := start + 2 + 12*n
        if next+4 > size {
            return fmt.Errorf("tiff: IFD at offset %d truncated", off)
        }

        for i := uint64(0); i < n; i++ {
            e := block[start+2+12*i:]
            id := order.Uint16(e[0:2])
            typ := order.Uint16(e[2:4])
            count := uint64(order.Uint32(e[4:8]))
            if int(typ) < len(tiffTypeSize) && count*tiffTypeSize[typ] > size {
                return fmt.Errorf("tiff: tag 0x%04X declares %d values, more than a %d byte block holds", id, count, size)
            }
            if tiffSubIFDTags[id] && count == 1 && (typ == 4 || typ == 13) {
                pending = append(pending, order.Uint32(e[8:12]))
            }
        }
        pending = append(pending, order.Uint32(block[next:next+4]))
    }
    return nil
}
