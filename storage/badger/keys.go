package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/vitaeworks/vitae/core"
)

// Key prefixes for different data types
const (
	categoryRecordPrefix    = "catrec"
	categoryOwnerPrefix     = "catown"
	categoryOwnerNamePrefix = "catona"
	categoryIDSeq           = "catrecseq"

	entryRecordPrefix   = "entrec"
	entryOwnerPrefix    = "entown"
	entryCategoryPrefix = "entcat"
	entryDedupPrefix    = "entdk"
	entryIDSeq          = "entrecseq"

	jobRecordPrefix = "jobrec"
	jobOwnerPrefix  = "jobown"
	jobIDSeq        = "jobrecseq"

	candidateRecordPrefix = "canrec"
	candidateOwnerPrefix  = "canown"
	candidateIDSeq        = "canrecseq"

	subscriptionRecordPrefix = "subrec"

	activityRecordPrefix = "actrec"
	activityIDSeq        = "actrecseq"
)

// makeRecordKey generates a primary record key for an ID under a prefix.
func makeRecordKey(prefix string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", prefix, id))
}

// makePairKey generates a composite key for a two-ID index.
// Format: prefix:firstID:secondID
func makePairKey(prefix string, first, second core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes per ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(first))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(second))
	return buf
}

// makePartialPairKey generates a partial key for prefix scans over a
// two-ID index.
// Format: prefix:firstID
func makePartialPairKey(prefix string, first core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(first))
	return buf
}

// makeCategoryNameKey generates a composite key for category lookup by
// (owner, name). Names are lowercased so the lookup is case-insensitive.
// Format: prefix:ownerID:lower(name)
func makeCategoryNameKey(ownerID core.ID, name string) []byte {
	lowered := strings.ToLower(name)
	prefixBytes := []byte(categoryOwnerNamePrefix + ":")
	totalSize := len(prefixBytes) + 8 + len(lowered)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(ownerID))
	offset += 8
	copy(buf[offset:], []byte(lowered))
	return buf
}

// makeSubscriptionKey generates a key for an owner's subscription.
func makeSubscriptionKey(ownerID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", subscriptionRecordPrefix, ownerID))
}

// idFromPairKey extracts the trailing ID from a two-ID composite key.
func idFromPairKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}
