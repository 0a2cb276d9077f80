package protocol

// HandshakeStatus represents the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x04
	HandshakeInvalidFormat   HandshakeStatus = 0x06
	HandshakeInternalError   HandshakeStatus = 0x08
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion represents a protocol version as major.minor.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the current protocol version.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// Compatible reports whether a peer speaking v can talk to this build.
// Only the major version has to match.
func (v ProtocolVersion) Compatible() bool {
	return v.Major == CurrentVersion.Major
}

// ClientHello is the first frame a page sends after the socket opens.
// Elements lists the ids of the toast elements the page contains; the
// server never patches an id that is not listed.
type ClientHello struct {
	Version  ProtocolVersion
	Elements []string
}

// ServerHello is the server's response to ClientHello.
type ServerHello struct {
	Status     HandshakeStatus
	SessionID  string
	ServerTime uint64 // Unix milliseconds
}

// NewClientHello creates a ClientHello for the current version.
func NewClientHello(elements ...string) *ClientHello {
	return &ClientHello{Version: CurrentVersion, Elements: elements}
}

// NewServerHello creates a successful ServerHello.
func NewServerHello(sessionID string, serverTime uint64) *ServerHello {
	return &ServerHello{Status: HandshakeOK, SessionID: sessionID, ServerTime: serverTime}
}

// NewServerHelloError creates a ServerHello carrying an error status.
func NewServerHelloError(status HandshakeStatus) *ServerHello {
	return &ServerHello{Status: status}
}

// EncodeClientHello encodes a ClientHello payload.
func EncodeClientHello(ch *ClientHello) []byte {
	e := NewEncoder()
	e.WriteByte(ch.Version.Major)
	e.WriteByte(ch.Version.Minor)
	e.WriteUvarint(uint64(len(ch.Elements)))
	for _, id := range ch.Elements {
		e.WriteString(id)
	}
	return e.Bytes()
}

// DecodeClientHello decodes a ClientHello payload.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	ch := &ClientHello{}

	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ch.Version = ProtocolVersion{Major: major, Minor: minor}

	count, err := d.ReadCount(MaxElementCount)
	if err != nil {
		return nil, err
	}
	ch.Elements = make([]string, count)
	for i := range ch.Elements {
		if ch.Elements[i], err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	return ch, nil
}

// EncodeServerHello encodes a ServerHello payload.
func EncodeServerHello(sh *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.SessionID)
	e.WriteUint64(sh.ServerTime)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello payload.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	sh := &ServerHello{}

	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	sh.Status = HandshakeStatus(status)

	if sh.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if sh.ServerTime, err = d.ReadUint64(); err != nil {
		return nil, err
	}
	return sh, nil
}
