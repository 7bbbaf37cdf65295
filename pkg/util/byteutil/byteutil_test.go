// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package byteutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBigEndian(t *testing.T) {
	r := require.New(t)
	r.Equal([]byte{0x1, 0xdf, 0x5e, 0x76}, Uint32ToBytesBigEndian(31415926))
	b := Uint64ToBytesBigEndian(31415926)
	r.Equal([]byte{0, 0, 0, 0, 0x1, 0xdf, 0x5e, 0x76}, b)
	r.Equal(uint64(31415926), BytesToUint64BigEndian(b))
}

func TestMust(t *testing.T) {
	r := require.New(t)
	r.Equal([]byte{1}, Must([]byte{1}, nil))
	r.Panics(func() { Must(nil, errors.New("failed")) })
}
