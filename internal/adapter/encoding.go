package adapter

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// JSON wraps encoding/json so payload building can be stubbed in tests
//
//go:generate mockgen -source=encoding.go -destination=../mocks/encoding.go -package=mocks -mock_names=JSON=MockJSON,JCS=MockJCS
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// JCS canonicalizes JSON documents per RFC 8785. Event payloads and grant
// token digests are canonicalized so equal content always hashes equally.
type JCS interface {
	Transform(data []byte) ([]byte, error)
}

type stdJSON struct{}

func NewJSON() JSON {
	return stdJSON{}
}

func (stdJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (stdJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type rfc8785 struct{}

// NewJCS returns the gowebpki/jcs canonicalizer
func NewJCS() JCS {
	return rfc8785{}
}

func (rfc8785) Transform(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}
