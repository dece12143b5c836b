package main

import (
	"sort"
	"strings"
)

// GenerateStatusCodes produces the Go source for the status code table.
// Entries are sorted by numeric code so YAML order does not matter.
func GenerateStatusCodes(table *RawStatusCodes, source string) (string, error) {
	codes := make([]statusCodeData, 0, len(table.Codes))
	for _, entry := range table.Codes {
		codes = append(codes, statusCodeData{
			Ident:       goIdentifier(entry.Name),
			Name:        entry.Name,
			Code:        entry.Code,
			Description: entry.Description,
		})
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i].Code < codes[j].Code
	})

	var b strings.Builder
	renderTemplate(&b, "statusCodes", statusCodesData{
		Source: source,
		Codes:  codes,
	})
	return b.String(), nil
}

// goIdentifier converts a protocol status code name to its Go
// identifier: "Id" becomes "ID" before an uppercase letter or at the
// end of the name ("BadSessionIdInvalid" -> "BadSessionIDInvalid").
// "Id" followed by a lowercase letter is part of a word and kept.
func goIdentifier(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == 'I' && i+1 < len(name) && name[i+1] == 'd' {
			next := i + 2
			if next >= len(name) || (name[next] >= 'A' && name[next] <= 'Z') {
				b.WriteString("ID")
				i++
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
