// Package records rebuilds the list of minted names from the registry.
package records

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
)

// TLD is appended to names for display only, it is never sent on chain.
const TLD = ".ajer"

type Record struct {
	// Index is the position of the name in the name list of the refresh
	// that produced this record.
	Index  int
	Name   string
	Record string
	Owner  common.Address
}

func (r Record) DisplayName() string {
	return r.Name + TLD
}

// EditableBy tells whether account owns the name. Address case doesn't
// matter.
func (r Record) EditableBy(account string) bool {
	if account == "" {
		return false
	}
	return strings.EqualFold(r.Owner.Hex(), strings.TrimSpace(account))
}

type recordSource []Record

func (s recordSource) String(i int) string {
	return s[i].Name
}

func (s recordSource) Len() int {
	return len(s)
}

// Filter returns the records whose name fuzzily matches pattern, best
// matches first. An empty pattern matches everything in order.
func Filter(records []Record, pattern string) []Record {
	pattern = strings.TrimSuffix(strings.TrimSpace(pattern), TLD)
	if pattern == "" {
		return append([]Record{}, records...)
	}
	matches := fuzzy.FindFrom(pattern, recordSource(records))
	result := make([]Record, 0, len(matches))
	for _, m := range matches {
		result = append(result, records[m.Index])
	}
	return result
}

// OwnedBy returns the records account can edit.
func OwnedBy(records []Record, account string) []Record {
	result := []Record{}
	for _, r := range records {
		if r.EditableBy(account) {
			result = append(result, r)
		}
	}
	return result
}
