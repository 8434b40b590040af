package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedRecord is returned when stored bytes cannot be decoded into a Record.
var ErrMalformedRecord = errors.New("malformed session record")

// Codec converts a Record to and from the bytes kept in a Slot.
type Codec interface {
	Encode(record Record) ([]byte, error)
	Decode(data []byte) (Record, error)
}

// wireRecord is the stored shape: {"loggedIn": bool, "timestamp": unix millis}.
// Pointers tell a missing field apart from a zero value.
type wireRecord struct {
	LoggedIn  *bool  `json:"loggedIn"`
	Timestamp *int64 `json:"timestamp"`
}

func (w wireRecord) record() (Record, error) {
	if w.LoggedIn == nil || w.Timestamp == nil {
		return Record{}, fmt.Errorf("%w: missing loggedIn or timestamp", ErrMalformedRecord)
	}
	return Record{
		Authorized: *w.LoggedIn,
		IssuedAt:   time.UnixMilli(*w.Timestamp),
	}, nil
}

func toWire(record Record) wireRecord {
	loggedIn := record.Authorized
	timestamp := record.IssuedAt.UnixMilli()
	return wireRecord{LoggedIn: &loggedIn, Timestamp: &timestamp}
}

// JSONCodec stores the record as plain JSON.
type JSONCodec struct{}

func (JSONCodec) Encode(record Record) ([]byte, error) {
	return json.Marshal(toWire(record))
}

func (JSONCodec) Decode(data []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return w.record()
}

// recordClaims carries the wire record inside a signed token.
type recordClaims struct {
	wireRecord
	jwt.RegisteredClaims
}

// JWTCodec stores the record as an HS256 signed token. A token with a bad
// signature decodes as malformed, so a tampered record is discarded.
type JWTCodec struct {
	key []byte
}

func NewJWTCodec(key string) *JWTCodec {
	return &JWTCodec{key: []byte(key)}
}

func (c *JWTCodec) Encode(record Record) ([]byte, error) {
	claims := recordClaims{wireRecord: toWire(record)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session record: %w", err)
	}
	return []byte(signed), nil
}

func (c *JWTCodec) Decode(data []byte) (Record, error) {
	var claims recordClaims
	_, err := jwt.ParseWithClaims(string(data), &claims, func(token *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return claims.record()
}
