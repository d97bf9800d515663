package services

import (
	"fmt"
	"strings"
)

// FormatPlain renders the matched set as a human-readable report: a header
// with the count, then one "index: path" line per match, index from 0.
func FormatPlain(paths []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Adware files found: %d\n", len(paths))
	for i, p := range paths {
		fmt.Fprintf(&b, "%d: %s\n", i, p)
	}
	return b.String()
}

// FormatExtensionAttribute renders the matched set in the extension
// attribute format the device management tool ingests. The wrapper and the
// True/False tokens are a byte-for-byte contract:
//
//	<result>False</result>
//	<result>True\n0: /a\n1: /b\n</result>
func FormatExtensionAttribute(paths []string) string {
	var b strings.Builder
	b.WriteString("<result>")
	if len(paths) > 0 {
		b.WriteString("True\n")
		for i, p := range paths {
			fmt.Fprintf(&b, "%d: %s\n", i, p)
		}
	} else {
		b.WriteString("False")
	}
	b.WriteString("</result>")
	return b.String()
}
