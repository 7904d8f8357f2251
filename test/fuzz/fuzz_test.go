// Package fuzz_test fuzzes the decode paths that consume on-disk bytes:
// tagged values, serialized mappings, digest files, and snapshot
// payloads. Every failure mode must surface as a typed error, never a
// panic.
package fuzz_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/snapkv/snapkv/internal/integrity"
	"github.com/snapkv/snapkv/internal/layout"
	"github.com/snapkv/snapkv/internal/snapshot"
	"github.com/snapkv/snapkv/pkg/model"
)

func FuzzValueDecode(f *testing.F) {
	f.Add([]byte(`{"t":"i32","v":1}`))
	f.Add([]byte(`{"t":"str","v":"hello"}`))
	f.Add([]byte(`{"t":"bool","v":true}`))
	f.Add([]byte(`{"t":"null"}`))
	f.Add([]byte(`{"t":"arr","v":[{"t":"i32","v":1}]}`))
	f.Add([]byte(`{"t":"obj","v":{"k":{"t":"f64","v":0.5}}}`))
	f.Add([]byte(`{"t":"i32","v":"notanumber"}`))
	f.Add([]byte(`{"t":"u32","v":-1}`))
	f.Add([]byte(`{"v":1}`))
	f.Add([]byte(`not json`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var v model.Value
		if err := json.Unmarshal(data, &v); err != nil {
			return
		}
		// A successful decode must be internally consistent: the value
		// re-encodes, and the round trip is structurally equal.
		encoded, err := json.Marshal(&v)
		if err != nil {
			t.Fatalf("decoded value failed to re-encode: %v", err)
		}
		var again model.Value
		if err := json.Unmarshal(encoded, &again); err != nil {
			t.Fatalf("re-encoded value failed to decode: %v", err)
		}
		if !v.Equal(&again) {
			t.Fatalf("round trip changed value: %s != %s", &v, &again)
		}
	})
}

func FuzzMappingDecode(f *testing.F) {
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"k":{"t":"i32","v":1}}`))
	f.Add([]byte(`{"k":{"t":"i32","v":1.5}}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`null`))

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := model.DecodeMapping(data)
		if err != nil {
			return
		}
		if _, err := model.EncodeMapping(m); err != nil {
			t.Fatalf("decoded mapping failed to encode: %v", err)
		}
	})
}

func FuzzDigestDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x00, 0x00, 0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x02})

	f.Fuzz(func(t *testing.T, raw []byte) {
		sum, err := integrity.DecodeDigest(raw)
		if err != nil {
			if len(raw) == integrity.DigestSize {
				t.Fatalf("4-byte digest rejected: %v", err)
			}
			return
		}
		if got := integrity.EncodeDigest(sum); string(got) != string(raw) {
			t.Fatalf("digest did not round-trip: % x != % x", got, raw)
		}
	})
}

func FuzzSnapshotLoad(f *testing.F) {
	f.Add([]byte(`{"version": {"t": "i32", "v": 1}}`), []byte{0, 0, 0, 0})
	f.Add([]byte(`{}`), []byte{})
	f.Add([]byte{0x1f, 0x8b, 0x00}, []byte{1, 2, 3, 4})
	f.Add([]byte("KVS1SEALgarbage"), []byte{1, 2, 3, 4})

	f.Fuzz(func(t *testing.T, payload, sidecar []byte) {
		dir := t.TempDir()
		const iid model.InstanceID = 1
		if err := os.WriteFile(filepath.Join(dir, layout.SnapshotFile(iid, 1)), payload, 0o644); err != nil {
			t.Skip()
		}
		if err := os.WriteFile(filepath.Join(dir, layout.SnapshotDigestFile(iid, 1)), sidecar, 0o644); err != nil {
			t.Skip()
		}

		// Arbitrary bytes must either load as a valid mapping or fail
		// with an error; panics and partial results are the bugs.
		mgr := snapshot.New(dir, iid)
		m, err := mgr.Load(1)
		if err == nil && m == nil {
			t.Fatal("nil mapping without error")
		}
	})
}
