package sync

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// shortIDLen is the number of hex characters kept from the digest. Eight
// characters (32 bits) is enough to tell apart plugins that already share
// a name, which is the only population a short id ever competes in.
const shortIDLen = 8

// ShortID derives a stable fingerprint from a plugin source reference.
// It is a pure function of the source string: the same source yields the
// same id on every run and every machine, and the id is not reversible.
func ShortID(source model.PluginSource) string {
	sum := blake3.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])[:shortIDLen]
}
