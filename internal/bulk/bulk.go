// Package bulk builds newline-delimited JSON request bodies for the
// OpenSearch/Elasticsearch _bulk API. Construction is pure: the same batch,
// index, and mode always produce the same payload, so a retry can resend the
// body without rebuilding it.
package bulk

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// idLength is the number of digest bytes kept for a document id.
const idLength = 12

// timestampFormat is the millisecond-precision UTC form written in live mode.
const timestampFormat = "2006-01-02T15:04:05.000Z"

// timestampRE matches ISO-8601-like timestamps such as
// 2024-11-20T18:35:12.123Z, 2024-11-20T18:35:12+00:00, and
// 2024-11-20 18:35:12.
var timestampRE = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d{3,9})?(?:Z|[+-]\d{2}:\d{2})?`)

// DocumentID derives a deterministic document id from record content: the
// first 12 bytes of the SHA-256 digest, hex-encoded. Identical content always
// maps to the same id, which makes re-submitting a batch an idempotent create.
func DocumentID(record string) string {
	digest := sha256.Sum256([]byte(record))
	return hex.EncodeToString(digest[:idLength])
}

// RewriteTimestamps replaces every ISO-8601-like timestamp substring in
// record with now, rendered as millisecond-precision UTC.
func RewriteTimestamps(record string, now time.Time) string {
	replacement := now.UTC().Format(timestampFormat)
	return timestampRE.ReplaceAllString(record, replacement)
}

// Body serializes a batch into a _bulk request body: one create action line
// per record, each followed by the record itself. In live mode the id is
// omitted so the server assigns one, and embedded timestamps are rewritten
// to now.
func Body(records []string, index string, live bool, now time.Time) []byte {
	var buf bytes.Buffer
	for _, record := range records {
		if live {
			fmt.Fprintf(&buf, "{\"create\":{\"_index\":%q}}\n", index)
			buf.WriteString(RewriteTimestamps(record, now))
		} else {
			fmt.Fprintf(&buf, "{\"create\":{\"_index\":%q,\"_id\":%q}}\n", index, DocumentID(record))
			buf.WriteString(record)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
