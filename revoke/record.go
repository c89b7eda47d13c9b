package revoke

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	refreshRecordVersionV1   = 1
	blacklistRecordVersionV1 = 1
)

var errRecordCorrupt = errors.New("revoke: record corrupt")

// RefreshTokenRecord is the server-side half of a refresh token. A refresh
// token is valid only while its signature verifies AND a matching live record
// exists.
type RefreshTokenRecord struct {
	TokenID   string
	UserID    string
	CreatedAt int64
	ExpiresAt int64
}

// BlacklistEntry marks a token identifier as revoked until its natural
// expiry.
type BlacklistEntry struct {
	BlacklistedAt int64
	ExpiresAt     int64
}

func encodeRefreshRecord(r *RefreshTokenRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(refreshRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}
	if err := writeString(&buf, r.UserID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, r.TokenID); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeRefreshRecord(data []byte) (*RefreshTokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != refreshRecordVersionV1 {
		return nil, errRecordCorrupt
	}

	record := &RefreshTokenRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, errRecordCorrupt
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, errRecordCorrupt
	}
	if record.UserID, err = readString(reader); err != nil {
		return nil, errRecordCorrupt
	}
	if record.TokenID, err = readString(reader); err != nil {
		return nil, errRecordCorrupt
	}

	return record, nil
}

func encodeBlacklistEntry(e *BlacklistEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(blacklistRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, e.BlacklistedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, e.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeBlacklistEntry(data []byte) (*BlacklistEntry, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != blacklistRecordVersionV1 {
		return nil, errRecordCorrupt
	}

	entry := &BlacklistEntry{}
	if err := binary.Read(reader, binary.BigEndian, &entry.BlacklistedAt); err != nil {
		return nil, errRecordCorrupt
	}
	if err := binary.Read(reader, binary.BigEndian, &entry.ExpiresAt); err != nil {
		return nil, errRecordCorrupt
	}

	return entry, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("revoke: field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
