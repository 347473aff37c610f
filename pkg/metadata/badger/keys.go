package badger

import "encoding/binary"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the different data
// types into logical namespaces. The \x00 separator between tenant, path, and
// name components cannot appear in slugs (alphanumeric plus hyphen) or in
// normalized paths, which keeps prefix scans unambiguous.
//
// Data Type          Prefix  Key Format                          Value
// =========================================================================
// Entry Data         "e:"    e:<entryID>                         FileEntry (JSON)
// Ready Pointer      "r:"    r:<tenant>\x00<path>                entryID (bytes)
// Children Index     "c:"    c:<tenant>\x00<parent>\x00<name>    entryID (bytes)
// Pending Index      "w:"    w:<entryID>                         mtime (uint64 ns, big-endian)
// Sandboxes          "s:"    s:<slug>                            Sandbox (JSON)
//
// Entry data is append-only apart from in-place status and field patches;
// tombstoned entries stay under "e:" forever (history is never purged). The
// "r:" and "c:" namespaces index only the ready subset and are maintained by
// every transition: indexed on insert/commit, dropped on tombstone. "w:"
// indexes pending entries by reservation time so the reconciler can find
// stranded writes without scanning all history.

const (
	prefixEntry   = "e:"
	prefixReady   = "r:"
	prefixChild   = "c:"
	prefixPending = "w:"
	prefixSandbox = "s:"

	keySep = "\x00"
)

func keyEntry(entryID string) []byte {
	return []byte(prefixEntry + entryID)
}

func keyReady(tenant, path string) []byte {
	return []byte(prefixReady + tenant + keySep + path)
}

func keyChild(tenant, parentPath, name string) []byte {
	return []byte(prefixChild + tenant + keySep + parentPath + keySep + name)
}

// childScanPrefix is the prefix covering all children of one directory.
func childScanPrefix(tenant, parentPath string) []byte {
	return []byte(prefixChild + tenant + keySep + parentPath + keySep)
}

func keyPending(entryID string) []byte {
	return []byte(prefixPending + entryID)
}

func keySandbox(slug string) []byte {
	return []byte(prefixSandbox + slug)
}

func encodeTimestamp(ns int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(ns))
	return buf
}

func decodeTimestamp(buf []byte) int64 {
	if len(buf) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(buf))
}
