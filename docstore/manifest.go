package docstore

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/termq/model"
)

const (
	magicManifest   = 0x444D4658 // "DMFX"
	versionManifest = 1
	maxKeyLen       = 1 << 20
)

// manifest maps record keys to ids. It is not safe for concurrent use; the
// Store guards it.
type manifest struct {
	keys map[string]model.DocID
	ids  map[model.DocID]string
	next model.DocID
}

func newManifest() *manifest {
	return &manifest{
		keys: make(map[string]model.DocID),
		ids:  make(map[model.DocID]string),
		next: 1,
	}
}

// assign returns the id for key, issuing one if the key is new.
func (m *manifest) assign(key string) (model.DocID, bool) {
	if id, ok := m.keys[key]; ok {
		return id, false
	}
	id := m.next
	m.next++
	m.keys[key] = id
	m.ids[id] = key
	return id, true
}

func (m *manifest) remove(id model.DocID) (string, bool) {
	key, ok := m.ids[id]
	if !ok {
		return "", false
	}
	delete(m.ids, id)
	delete(m.keys, key)
	return key, true
}

// encode writes the manifest:
//
//	[magic u32][version u32][count u64][next u32]
//	count x ([id u32][keyLen u32][key bytes])
//
// Entries are written in ascending id order.
func (m *manifest) encode() ([]byte, error) {
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)

	var hdr [20]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magicManifest)
	binary.LittleEndian.PutUint32(hdr[4:8], versionManifest)
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(m.ids)))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(m.next))
	if _, err := bw.Write(hdr[:]); err != nil {
		return nil, err
	}

	ids := make([]model.DocID, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var entry [8]byte
	for _, id := range ids {
		key := m.ids[id]
		binary.LittleEndian.PutUint32(entry[0:4], uint32(id))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(key)))
		if _, err := bw.Write(entry[:]); err != nil {
			return nil, err
		}
		if _, err := bw.WriteString(key); err != nil {
			return nil, err
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeManifest(r io.Reader) (*manifest, error) {
	br := bufio.NewReader(r)

	var hdr [20]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(hdr[0:4]); magic != magicManifest {
		return nil, fmt.Errorf("invalid manifest magic: %x", magic)
	}
	if ver := binary.LittleEndian.Uint32(hdr[4:8]); ver != versionManifest {
		return nil, fmt.Errorf("unsupported manifest version: %d", ver)
	}
	count := binary.LittleEndian.Uint64(hdr[8:16])

	m := newManifest()
	m.next = model.DocID(binary.LittleEndian.Uint32(hdr[16:20]))

	var entry [8]byte
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(br, entry[:]); err != nil {
			return nil, fmt.Errorf("read manifest entry %d: %w", i, err)
		}
		id := model.DocID(binary.LittleEndian.Uint32(entry[0:4]))
		n := binary.LittleEndian.Uint32(entry[4:8])
		if n > maxKeyLen {
			return nil, fmt.Errorf("manifest entry %d: key too long (%d bytes)", i, n)
		}
		key := make([]byte, n)
		if _, err := io.ReadFull(br, key); err != nil {
			return nil, fmt.Errorf("read manifest key %d: %w", i, err)
		}
		if id >= m.next {
			return nil, fmt.Errorf("manifest entry %d: id %d beyond next id %d", i, id, m.next)
		}
		m.keys[string(key)] = id
		m.ids[id] = string(key)
	}
	return m, nil
}
