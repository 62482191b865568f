// This file is part of mips - https://github.com/ge42dal/MIPS
//
// Copyright 2025 The mips authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Image is an assembled program: a raw byte image plus the entry point
// recorded by the assembler.
//
// The on-disk binary object format is little-endian throughout: a u32
// entry address, a u32 image size, then the image bytes.
type Image struct {
	Entry uint32
	Data  []byte
}

// ReadImage reads an image in the binary object format.
func ReadImage(r io.Reader) (*Image, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Wrap(err, "image header")
	}
	img := &Image{Entry: binary.LittleEndian.Uint32(hdr[:4])}
	img.Data = make([]byte, binary.LittleEndian.Uint32(hdr[4:]))
	if _, err := io.ReadFull(r, img.Data); err != nil {
		return nil, errors.Wrap(err, "image data")
	}
	return img, nil
}

// Write writes the image in the binary object format.
func (img *Image) Write(w io.Writer) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[:4], img.Entry)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(img.Data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "image header")
	}
	_, err := w.Write(img.Data)
	return errors.Wrap(err, "image data")
}

// LoadImageFile reads an image from fileName.
func LoadImageFile(fileName string) (*Image, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "load image")
	}
	defer f.Close()
	img, err := ReadImage(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "load image %s", fileName)
	}
	return img, nil
}

// SaveImageFile writes the image to fileName. The file is removed again
// if writing fails part way through.
func SaveImageFile(img *Image, fileName string) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "save image")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if e := w.Flush(); err == nil {
			err = e
		}
		if e := f.Close(); err == nil {
			err = e
		}
		if err != nil {
			os.Remove(fileName)
		}
	}()
	return img.Write(w)
}
