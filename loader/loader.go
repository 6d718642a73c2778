// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package loader turns an io.Reader into an addressed byte payload a bus
// device can absorb: a flat M68k memory image, not a banked cartridge.
package loader

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/master-g/m68k/bus"
)

// Image is a loaded program: the bytes themselves, the address they were
// recorded at, and an optional entry-point override for loaders (like
// S-records) that can name a start address distinct from the load
// origin.
type Image struct {
	Origin uint32
	Data   []byte
	Entry  *uint32
}

// FlatBinary reads every byte r has to offer and records it at origin.
// This is the common case for a linker-produced .bin image destined for
// RAM or ROM mapped at a known address.
func FlatBinary(r io.Reader, origin uint32) (Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, fmt.Errorf("loader: read flat binary: %w", err)
	}
	return Image{Origin: origin, Data: data}, nil
}

// WriteTo copies the image into any bus that accepts byte writes at
// arbitrary addresses, such as bus.RAM or an aggregate bus.Bus with a RAM
// device mapped. It stops and reports an error at the first byte the
// writer rejects, mirroring how the real bus would refuse an access
// outside a device's window.
func (img Image) WriteTo(w bus.Writer) error {
	for i, b := range img.Data {
		addr := img.Origin + uint32(i)
		if !w.WriteByte(addr, b) {
			return fmt.Errorf("loader: write rejected at address $%08X", addr)
		}
	}
	return nil
}

// EntryPoint returns the address execution should start at: the Entry
// override if the loader recorded one (S-records carry an S9 record for
// this), otherwise the image's load origin.
func (img Image) EntryPoint() uint32 {
	if img.Entry != nil {
		return *img.Entry
	}
	return img.Origin
}

// srecordError reports a malformed or checksum-mismatched S-record line.
// SRecord does not abort parsing on this error; it collects the first one
// and keeps going, since a single corrupt line in an otherwise good dump
// is common and the rest of the image is still useful.
type srecordError struct {
	line int
	msg  string
}

func (e *srecordError) Error() string {
	return fmt.Sprintf("loader: S-record line %d: %s", e.line, e.msg)
}

// SRecord parses Motorola S-record text, the object format most M68k
// toolchains emit. It understands the data records S1/S2/S3 (16-, 24- and
// 32-bit addresses respectively), skips the header record S0 and any
// count/symbol records it does not need, and honors the S7/S8/S9
// termination records for the program's entry point. Records of an
// unrecognized type are skipped rather than treated as fatal, since a
// forward-compatible toolchain may emit record types this parser predates.
func SRecord(r io.Reader) (Image, error) {
	scanner := bufio.NewScanner(r)
	var img Image
	var firstErr error
	haveOrigin := false

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] != 'S' {
			continue
		}
		if len(line) < 4 {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "line too short"}
			}
			continue
		}

		recType := line[1]
		countBytes, err := hex.DecodeString(line[2:4])
		if err != nil || len(countBytes) != 1 {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "invalid byte count field"}
			}
			continue
		}
		count := int(countBytes[0])
		rest := line[4:]
		if len(rest) != count*2 {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "byte count does not match record length"}
			}
			continue
		}
		payload, err := hex.DecodeString(rest)
		if err != nil {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "invalid hex payload"}
			}
			continue
		}
		if !checksumOK(countBytes[0], payload) {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "checksum mismatch"}
			}
			continue
		}
		// payload's final byte is always the checksum; strip it before
		// interpreting address/data.
		body := payload[:len(payload)-1]

		var addrWidth int
		var term bool
		switch recType {
		case '0':
			continue
		case '1':
			addrWidth = 2
		case '2':
			addrWidth = 3
		case '3':
			addrWidth = 4
		case '5', '6':
			continue
		case '7':
			addrWidth = 4
			term = true
		case '8':
			addrWidth = 3
			term = true
		case '9':
			addrWidth = 2
			term = true
		default:
			continue
		}
		if len(body) < addrWidth {
			if firstErr == nil {
				firstErr = &srecordError{lineNo, "record shorter than its address field"}
			}
			continue
		}
		addr := beUint(body[:addrWidth])
		data := body[addrWidth:]

		if term {
			entry := addr
			img.Entry = &entry
			continue
		}
		if len(data) == 0 {
			continue
		}
		if !haveOrigin {
			img.Origin = addr
			haveOrigin = true
		}
		img.appendAt(addr, data)
	}
	if err := scanner.Err(); err != nil {
		return img, fmt.Errorf("loader: scan S-record input: %w", err)
	}
	return img, firstErr
}

// appendAt grows img.Data so it spans [Origin, addr+len(data)) and copies
// data into place, filling any gap between previously seen records with
// zero bytes. Real S-record dumps are almost always contiguous, but the
// format does not guarantee it.
func (img *Image) appendAt(addr uint32, data []byte) {
	end := addr + uint32(len(data)) - img.Origin
	if end > uint32(len(img.Data)) {
		grown := make([]byte, end)
		copy(grown, img.Data)
		img.Data = grown
	}
	copy(img.Data[addr-img.Origin:], data)
}

func beUint(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func checksumOK(count uint8, payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	sum := uint32(count)
	for _, b := range payload[:len(payload)-1] {
		sum += uint32(b)
	}
	want := uint8(^sum)
	return want == payload[len(payload)-1]
}
