// Package protocol implements the binary wire protocol spoken between the
// toastpop server and the page client.
//
// The protocol carries DOM patches from server to client over a WebSocket.
// A page announces which toast elements it contains in its handshake; the
// server then only ever patches those elements.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// Payloads longer than MaxPayloadSize are split by Fragment into frames
// with FlagMore set on all but the last; an Assembler joins them again,
// up to MaxMessageSize.
//
// # Frame Types
//
//   - FrameHandshake (0x00): ClientHello / ServerHello
//   - FramePatches (0x02): Server → Client patches
//   - FrameControl (0x03): Ping, Pong, Close
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: Compact encoding for small integers (protobuf-style)
//   - Length-prefixed: Strings prefixed with varint length
//   - Big-endian: Fixed-width integers (uint16, uint64)
//
// # Patches
//
// Each patch names an operation, a target element id and operation data.
// A toast presentation is typically one frame of seven patches:
//
//	[Op: 0x01][ID: len-prefixed][Value: len-prefixed]   SetText title
//	[Op: 0x01][ID: len-prefixed][Value: len-prefixed]   SetText message
//	[Op: 0x02][ID][Key: "class"][Value]                 reset content class
//	[Op: 0x10][ID][Class]                               add modifier
//	[Op: 0x13][ID][Property][Value]                     icon display x2
//	[Op: 0x10][ID]["is-visible"]                        show overlay
//
// # Usage Example
//
//	pf := &PatchesFrame{
//	    Seq: 1,
//	    Patches: []Patch{
//	        NewSetTextPatch("toast-popup-title", "Saved"),
//	        NewAddClassPatch("toast-popup-overlay", "is-visible"),
//	    },
//	}
//	frame := NewFrame(FramePatches, EncodePatches(pf))
//	data, err := frame.Encode()
package protocol
