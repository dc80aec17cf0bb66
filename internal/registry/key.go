package registry

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/zeebo/blake3"
)

// Key identifies a server instance: one application with one allow-list.
type Key [32]byte

// String returns the lowercase hex encoding of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns the first 12 hex characters, for logs and listings.
func (k Key) Short() string {
	return k.String()[:12]
}

// instanceDomainKey is the ASCII domain name, zero-padded to 32 bytes.
var instanceDomainKey = [32]byte{
	'a', 's', 'h', '-', 'a', 'i', '.', 'i', 'n', 's', 't', 'a', 'n', 'c', 'e', 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

type fingerprintInput struct {
	Application string    `json:"application"`
	Tools       *[]string `json:"tools"`
}

// Fingerprint derives the instance key for an application and allow-list.
// The allow-list is order-independent and deduplicated; a nil list (all
// tools) and an empty list (no tools) produce different keys.
func Fingerprint(application string, allow []string) Key {
	input := fingerprintInput{Application: application}
	if allow != nil {
		tools := canonicalTools(allow)
		input.Tools = &tools
	}
	// Marshalling a struct of strings cannot fail.
	data, _ := json.Marshal(input)

	hasher, err := blake3.NewKeyed(instanceDomainKey[:])
	if err != nil {
		panic("blake3.NewKeyed with 32-byte key failed: " + err.Error())
	}
	hasher.Write(data)

	var key Key
	copy(key[:], hasher.Sum(nil))
	return key
}

func canonicalTools(allow []string) []string {
	tools := make([]string, 0, len(allow))
	seen := make(map[string]bool, len(allow))
	for _, name := range allow {
		if seen[name] {
			continue
		}
		seen[name] = true
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return tools
}
