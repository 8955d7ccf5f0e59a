package tables

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/contactdb/internal/contact"
)

// Statements for the shared Details side table. A row is written next to
// every detail row whose common metadata is non-empty and is removed in
// lockstep with it.
const (
	InsertCommonSQL = `INSERT INTO Details (contactId, detailId, detail, detailUri, linkedDetailUris, contexts)
		VALUES (?, ?, ?, ?, ?, ?)`
	DeleteCommonSQL = `DELETE FROM Details WHERE contactId = ? AND detail = ?`
	SelectCommonSQL = `SELECT detailId, detail, detailUri, linkedDetailUris, contexts
		FROM Details WHERE contactId = ?`
)

// CommonValues returns the bind values for InsertCommonSQL.
// ok is false when d carries no metadata and no side-table row is needed.
func CommonValues(key contact.StorageKey, detailID int64, d contact.Detail) (values []any, ok bool) {
	meta := d.Meta()
	if meta.Empty() {
		return nil, false
	}
	return []any{
		int64(key),
		detailID,
		string(d.Kind()),
		nullable(meta.DetailURI),
		EncodeSet(meta.LinkedDetailURIs),
		EncodeSet(meta.Contexts),
	}, true
}

// EncodeSet serializes a set of tags for storage. Duplicates are dropped,
// first occurrence wins. An empty set is stored as NULL.
func EncodeSet(values []string) any {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	data, err := json.Marshal(set)
	if err != nil {
		// []string always marshals.
		panic(err)
	}
	return string(data)
}

// DecodeSet is the inverse of EncodeSet. Malformed input decodes to nil.
func DecodeSet(s string) []string {
	if s == "" {
		return nil
	}
	var set []string
	if err := json.Unmarshal([]byte(s), &set); err != nil {
		return nil
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// NormalizePhoneNumber reduces a dialable number to its digits, keeping a
// leading '+'. Compatibility forms such as full-width digits are folded to
// ASCII first.
func NormalizePhoneNumber(number string) string {
	folded := norm.NFKC.String(strings.TrimSpace(number))
	var b strings.Builder
	for i, r := range folded {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.String() == "+" {
		return ""
	}
	return b.String()
}
