package wire

import (
	"fmt"
	"io"

	"github.com/vango-dev/rangeui/pkg/memhost"
)

// FrameMutations tags a frame carrying a mutation batch.
const FrameMutations byte = 0x01

var opCodes = map[memhost.MutationOp]byte{
	memhost.OpInsert:  1,
	memhost.OpRemove:  2,
	memhost.OpSetAttr: 3,
	memhost.OpListen:  4,
}

var opNames = map[byte]memhost.MutationOp{
	1: memhost.OpInsert,
	2: memhost.OpRemove,
	3: memhost.OpSetAttr,
	4: memhost.OpListen,
}

// EncodeMutations encodes batch as one frame.
func EncodeMutations(batch []memhost.Mutation) ([]byte, error) {
	e := NewEncoder(16 + 8*len(batch))
	if err := AppendMutations(e, batch); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// AppendMutations writes batch as one frame to e.
func AppendMutations(e *Encoder, batch []memhost.Mutation) error {
	if len(batch) > MaxBatch {
		return ErrBatchTooLarge
	}
	e.WriteByte(FrameMutations)
	e.WriteUvarint(uint64(len(batch)))
	for i, m := range batch {
		op, ok := opCodes[m.Op]
		if !ok {
			return fmt.Errorf("mutation %d: %w: %q", i, ErrUnknownOp, m.Op)
		}
		if m.Target < 0 || m.Parent < 0 || m.Index < 0 {
			return fmt.Errorf("mutation %d: negative field", i)
		}
		e.WriteByte(op)
		e.WriteUvarint(uint64(m.Target))
		e.WriteUvarint(uint64(m.Parent))
		e.WriteUvarint(uint64(m.Index))
		e.WriteString(m.Name)
		e.WriteString(m.Value)
	}
	return nil
}

// DecodeMutations decodes a frame produced by EncodeMutations.
func DecodeMutations(frame []byte) ([]memhost.Mutation, error) {
	d := NewDecoder(frame)

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind != FrameMutations {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFrame, kind)
	}

	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxBatch {
		return nil, ErrBatchTooLarge
	}
	// Every mutation takes at least six bytes.
	if count*6 > uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}

	batch := make([]memhost.Mutation, 0, count)
	for i := uint64(0); i < count; i++ {
		m, err := readMutation(d)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		batch = append(batch, m)
	}
	if d.Remaining() != 0 {
		return nil, ErrTrailingBytes
	}
	return batch, nil
}

func readMutation(d *Decoder) (memhost.Mutation, error) {
	var m memhost.Mutation

	code, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	op, ok := opNames[code]
	if !ok {
		return m, fmt.Errorf("%w: %d", ErrUnknownOp, code)
	}
	m.Op = op

	if m.Target, err = d.ReadInt(); err != nil {
		return m, err
	}
	if m.Parent, err = d.ReadInt(); err != nil {
		return m, err
	}
	if m.Index, err = d.ReadInt(); err != nil {
		return m, err
	}
	if m.Name, err = d.ReadString(); err != nil {
		return m, err
	}
	if m.Value, err = d.ReadString(); err != nil {
		return m, err
	}
	return m, nil
}
