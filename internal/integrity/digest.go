// Package integrity computes and verifies the 4-byte Adler-32 digests that
// accompany every stored payload (defaults definition and snapshots).
//
// A digest file holds exactly 4 raw bytes: the big-endian encoding of the
// Adler-32 checksum of the paired payload file's bytes, the byte order zlib
// uses for its ADLER32 trailer.
package integrity

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"os"

	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/fsutil"
)

// DigestSize is the byte length of an encoded digest.
const DigestSize = 4

// Digest computes the Adler-32 checksum of data.
func Digest(data []byte) uint32 {
	return adler32.Checksum(data)
}

// EncodeDigest renders a checksum as its 4-byte big-endian form.
func EncodeDigest(sum uint32) []byte {
	out := make([]byte, DigestSize)
	binary.BigEndian.PutUint32(out, sum)
	return out
}

// DecodeDigest parses the 4-byte big-endian form.
func DecodeDigest(raw []byte) (uint32, error) {
	if len(raw) != DigestSize {
		return 0, errclass.ErrIntegrity.WithMessagef("digest is %d bytes, want %d", len(raw), DigestSize)
	}
	return binary.BigEndian.Uint32(raw), nil
}

// WriteDigestFile atomically writes the digest of data to path.
func WriteDigestFile(path string, data []byte) error {
	if err := fsutil.AtomicWrite(path, EncodeDigest(Digest(data)), 0o644); err != nil {
		return errclass.ErrIO.WithMessagef("write digest %s: %v", path, err)
	}
	return nil
}

// VerifyBytes checks data against an encoded digest.
func VerifyBytes(data, rawDigest []byte) error {
	want, err := DecodeDigest(rawDigest)
	if err != nil {
		return err
	}
	if got := Digest(data); got != want {
		return errclass.ErrIntegrity.WithMessagef("digest mismatch: computed %08x, stored %08x", got, want)
	}
	return nil
}

// VerifyFile checks the payload at dataPath against the digest file at
// digestPath. A missing digest file is an integrity failure (the payload
// cannot be vouched for); unreadable files are I/O failures.
func VerifyFile(dataPath, digestPath string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errclass.ErrNotFound.WithMessagef("payload %s", dataPath)
		}
		return errclass.ErrIO.WithMessagef("read payload %s: %v", dataPath, err)
	}

	rawDigest, err := os.ReadFile(digestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errclass.ErrIntegrity.WithMessagef("digest file %s missing", digestPath)
		}
		return errclass.ErrIO.WithMessagef("read digest %s: %v", digestPath, err)
	}

	if err := VerifyBytes(data, rawDigest); err != nil {
		return fmt.Errorf("%s: %w", dataPath, err)
	}
	return nil
}
