package protocol

import "errors"

// ErrUnknownPatchOp is returned when a frame contains an op this decoder
// cannot size, which makes the rest of the frame unreadable.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// PatchOp is the type of patch operation. Values are shared with the page
// client and must not be renumbered.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Replace text content
	PatchSetAttr     PatchOp = 0x02 // Set attribute
	PatchAddClass    PatchOp = 0x10 // Add CSS class
	PatchRemoveClass PatchOp = 0x11 // Remove CSS class
	PatchSetStyle    PatchOp = 0x13 // Set inline style property
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchAddClass:
		return "AddClass"
	case PatchRemoveClass:
		return "RemoveClass"
	case PatchSetStyle:
		return "SetStyle"
	default:
		return "Unknown"
	}
}

// Patch is a single DOM operation against the element with id ID.
type Patch struct {
	Op    PatchOp
	ID    string // Target element id
	Key   string // Attribute or style property
	Value string // Text, attribute value, class or style value
}

// PatchesFrame is a batch of patches with a sequence number. The client
// applies a frame atomically, in order.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame payload into e.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.ID)

	switch p.Op {
	case PatchSetText, PatchAddClass, PatchRemoveClass:
		e.WriteString(p.Value)
	case PatchSetAttr, PatchSetStyle:
		e.WriteString(p.Key)
		e.WriteString(p.Value)
	}
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	return DecodePatchesFrom(NewDecoder(data))
}

// DecodePatchesFrom decodes a patches frame payload from d.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount(MaxPatchCount)
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := range patches {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(op)

	if p.ID, err = d.ReadString(); err != nil {
		return err
	}

	switch p.Op {
	case PatchSetText, PatchAddClass, PatchRemoveClass:
		p.Value, err = d.ReadString()
	case PatchSetAttr, PatchSetStyle:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
	default:
		return ErrUnknownPatchOp
	}
	return err
}

// NewSetTextPatch creates a SetText patch.
func NewSetTextPatch(id, text string) Patch {
	return Patch{Op: PatchSetText, ID: id, Value: text}
}

// NewSetAttrPatch creates a SetAttr patch.
func NewSetAttrPatch(id, key, value string) Patch {
	return Patch{Op: PatchSetAttr, ID: id, Key: key, Value: value}
}

// NewAddClassPatch creates an AddClass patch.
func NewAddClassPatch(id, class string) Patch {
	return Patch{Op: PatchAddClass, ID: id, Value: class}
}

// NewRemoveClassPatch creates a RemoveClass patch.
func NewRemoveClassPatch(id, class string) Patch {
	return Patch{Op: PatchRemoveClass, ID: id, Value: class}
}

// NewSetStylePatch creates a SetStyle patch.
func NewSetStylePatch(id, property, value string) Patch {
	return Patch{Op: PatchSetStyle, ID: id, Key: property, Value: value}
}
