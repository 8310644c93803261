package services

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SnapshotVersion is written into every serialized proposal.
const SnapshotVersion = 1

// ErrCorruptSnapshot is returned when stored proposal data cannot be restored.
var ErrCorruptSnapshot = errors.New("corrupt proposal snapshot")

//go:embed snapshot_schema.json
var snapshotSchemaJSON []byte

var snapshotSchema = gojsonschema.NewBytesLoader(snapshotSchemaJSON)

type snapshot struct {
	Version int `json:"version"`
	Proposal
}

// Serialize encodes the proposal including image data.
func (a *Assembler) Serialize() ([]byte, error) {
	return encodeSnapshot(a.proposal, true)
}

// SerializeCompact encodes the proposal without image data, for size-limited stores.
func (a *Assembler) SerializeCompact() ([]byte, error) {
	return encodeSnapshot(a.proposal, false)
}

func encodeSnapshot(p Proposal, withImages bool) ([]byte, error) {
	p = p.clone()
	if !withImages {
		for i := range p.Images {
			p.Images[i].Data = ""
		}
	}
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, Proposal: p})
	if err != nil {
		return nil, fmt.Errorf("serialize proposal: %w", err)
	}
	return data, nil
}

// Deserialize decodes a stored proposal. Malformed JSON or data that does
// not match the snapshot schema yields an error wrapping ErrCorruptSnapshot.
func Deserialize(data []byte) (Proposal, error) {
	result, err := gojsonschema.Validate(snapshotSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Proposal{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return Proposal{}, fmt.Errorf("%w: %s", ErrCorruptSnapshot, strings.Join(msgs, "; "))
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Proposal{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version > SnapshotVersion {
		return Proposal{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}
	return snap.Proposal, nil
}

// Restore replaces the assembler state with a stored proposal.
func (a *Assembler) Restore(data []byte) error {
	p, err := Deserialize(data)
	if err != nil {
		return err
	}
	a.Load(p)
	return nil
}
