// Package imagetest builds small jpeg, png and tiff files with hand-made EXIF
// blocks for tests.
package imagetest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

var be = binary.BigEndian

// EXIF tag ids used by the fixtures.
const (
	TagOrientation       uint16 = 0x0112
	TagDateTime          uint16 = 0x0132
	TagExifIFDPointer    uint16 = 0x8769
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004
)

// Tag is one IFD entry. Data holds the big-endian value bytes.
type Tag struct {
	ID    uint16
	Type  uint16
	Count uint32
	Data  []byte
}

func ASCII(id uint16, s string) Tag {
	b := append([]byte(s), 0)
	return Tag{ID: id, Type: 2, Count: uint32(len(b)), Data: b}
}

func Short(id uint16, v uint16) Tag {
	b := make([]byte, 2)
	be.PutUint16(b, v)
	return Tag{ID: id, Type: 3, Count: 1, Data: b}
}

// TIFF lays out a big-endian TIFF stream: IFD0, an Exif sub-IFD when exifIFD
// is non-nil, then all out-of-line values.
func TIFF(ifd0, exifIFD []Tag) []byte {
	ifd0 = append([]Tag(nil), ifd0...)
	if exifIFD != nil {
		ifd0 = append(ifd0, Tag{ID: TagExifIFDPointer, Type: 4, Count: 1, Data: make([]byte, 4)})
	}

	ifdSize := func(n int) int { return 2 + 12*n + 4 }
	const ifd0Off = 8
	exifOff := ifd0Off + ifdSize(len(ifd0))
	dataOff := exifOff
	if exifIFD != nil {
		dataOff += ifdSize(len(exifIFD))
		be.PutUint32(ifd0[len(ifd0)-1].Data, uint32(exifOff))
	}

	var buf, data bytes.Buffer
	writeIFD := func(tags []Tag) {
		binary.Write(&buf, be, uint16(len(tags)))
		for _, t := range tags {
			binary.Write(&buf, be, t.ID)
			binary.Write(&buf, be, t.Type)
			binary.Write(&buf, be, t.Count)
			if len(t.Data) <= 4 {
				v := make([]byte, 4)
				copy(v, t.Data)
				buf.Write(v)
				continue
			}
			binary.Write(&buf, be, uint32(dataOff+data.Len()))
			data.Write(t.Data)
		}
		binary.Write(&buf, be, uint32(0))
	}

	buf.WriteString("MM\x00\x2a")
	binary.Write(&buf, be, uint32(ifd0Off))
	writeIFD(ifd0)
	if exifIFD != nil {
		writeIFD(exifIFD)
	}
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// WithDateTimeOriginal is a TIFF stream carrying only DateTimeOriginal.
func WithDateTimeOriginal(value string) []byte {
	return TIFF([]Tag{Short(TagOrientation, 1)}, []Tag{ASCII(TagDateTimeOriginal, value)})
}

// Image returns a small gradient, the same pattern for every call.
func Image(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8((x + y) % 255),
				A: 255,
			})
		}
	}
	return img
}

// JPEG encodes a small image. A non-nil tiffData is inserted as an APP1 Exif
// segment right after SOI.
func JPEG(tiffData []byte) []byte {
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, Image(16, 16), &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	raw := enc.Bytes()
	if tiffData == nil {
		return raw
	}

	var out bytes.Buffer
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, be, uint16(2+6+len(tiffData)))
	out.WriteString("Exif\x00\x00")
	out.Write(tiffData)
	out.Write(raw[2:])
	return out.Bytes()
}

// PNG encodes a small image. A non-nil tiffData is stored in an eXIf chunk
// after IHDR.
func PNG(tiffData []byte) []byte {
	var enc bytes.Buffer
	if err := png.Encode(&enc, Image(16, 16)); err != nil {
		panic(err)
	}
	raw := enc.Bytes()
	if tiffData == nil {
		return raw
	}

	const afterIHDR = 8 + 4 + 4 + 13 + 4
	var out bytes.Buffer
	out.Write(raw[:afterIHDR])
	binary.Write(&out, be, uint32(len(tiffData)))
	chunk := append([]byte("eXIf"), tiffData...)
	out.Write(chunk)
	binary.Write(&out, be, crc32.ChecksumIEEE(chunk))
	out.Write(raw[afterIHDR:])
	return out.Bytes()
}
