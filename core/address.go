package core

import (
	"regexp"
	"strings"
)

// addressRE recognizes legacy and bech32 address forms embedded (with
// surrounding quotes) inside an opaque DVM message's JSON text (§4.4).
var addressRE = regexp.MustCompile(`"(?:[d78][1-9A-HJ-NP-Za-km-z]{25,34}|df1[qpzry9x8gf2tvdw0s3jn54khce6mua7l]{38,87})"`)

// ExtractAddresses scans haystack (typically the serialized vm.msg of a DVM
// transaction) and returns the deduplicated set of embedded addresses, with
// their enclosing quotes stripped.
func ExtractAddresses(haystack string) []string {
	matches := addressRE.FindAllString(haystack, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		addr := strings.Trim(m, `"`)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
