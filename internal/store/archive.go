package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"blah/internal/domain/types"
)

const archiveVersion = 1

var archiveEncMode cbor.EncMode

func init() {
	var err error
	archiveEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
}

// archivedEnvelope is the items.envelope column. Signee is the canonical
// JSON the signature covers, kept verbatim so the envelope can be
// verified again after reading.
type archivedEnvelope struct {
	Version uint8  `cbor:"1,keyasint"`
	Sig     []byte `cbor:"2,keyasint"`
	Signee  []byte `cbor:"3,keyasint"`
}

func encodeArchive(item types.Item) ([]byte, error) {
	data, err := archiveEncMode.Marshal(archivedEnvelope{
		Version: archiveVersion,
		Sig:     item.Sig[:],
		Signee:  item.Signee,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding archived envelope: %w", err)
	}
	return data, nil
}

func decodeArchive(data []byte, item *types.Item) error {
	var rec archivedEnvelope
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decoding archived envelope: %w", err)
	}
	if rec.Version != archiveVersion {
		return fmt.Errorf("unsupported archive version %d", rec.Version)
	}
	if len(rec.Sig) != types.SignatureSize {
		return fmt.Errorf("archived signature has %d bytes", len(rec.Sig))
	}
	copy(item.Sig[:], rec.Sig)
	item.Signee = rec.Signee
	return nil
}
