// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4D, 0x18},
}

func isLZ4(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLZ4)
}

func decompressLZ4Stream(src io.Reader) (io.Reader, error) {
	return lz4.NewReader(src), nil
}
