package xmodel

import "fmt"

// NullID is the identity written for an absent reference.
const NullID uint32 = 0

// encodeTable maps structure instances to identities for one Encode call.
// Keys are interface values holding pointers, so lookup is by instance and
// never by content.
type encodeTable struct {
	ids  map[Structure]uint32
	next uint32
}

func newEncodeTable() *encodeTable {
	return &encodeTable{ids: make(map[Structure]uint32), next: 1}
}

// lookup returns the identity already assigned to s.
func (t *encodeTable) lookup(s Structure) (uint32, bool) {
	id, ok := t.ids[s]
	return id, ok
}

// assign gives s the next identity. Identities start at 1 and are never reused.
func (t *encodeTable) assign(s Structure) uint32 {
	id := t.next
	t.ids[s] = id
	t.next++
	return id
}

func (t *encodeTable) len() int {
	return len(t.ids)
}

// decodeTable maps identities back to decoded instances for one Decode call.
// Identity n lives at items[n-1]; the encoder allocates sequentially, so a
// new identity must always be exactly len(items)+1.
type decodeTable struct {
	items []Structure
}

func newDecodeTable() *decodeTable {
	return &decodeTable{}
}

// resolve returns the instance bound to id, if any.
func (t *decodeTable) resolve(id uint32) (Structure, bool) {
	if id == NullID || uint64(id) > uint64(len(t.items)) {
		return nil, false
	}
	return t.items[id-1], true
}

// expect checks that id is the next identity to be bound.
func (t *decodeTable) expect(id uint32) error {
	if want := uint64(len(t.items)) + 1; uint64(id) != want {
		return fmt.Errorf("%w: identity %d before identity %d was written", ErrDanglingReference, id, want)
	}
	return nil
}

// bind records s under the next identity. It happens before the payload of s
// is read so that references back to s from inside its own payload resolve.
func (t *decodeTable) bind(s Structure) uint32 {
	t.items = append(t.items, s)
	return uint32(len(t.items))
}

func (t *decodeTable) len() int {
	return len(t.items)
}
