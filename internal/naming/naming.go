package naming

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameBytes is the byte budget most filesystems enforce per name.
const MaxFilenameBytes = 255

// unsafeReplacer maps the union of characters any target platform forbids in
// filenames to an underscore. A name built from the surviving set is legal
// on Linux, macOS, and Windows alike.
var unsafeReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// reservedDeviceNames are Windows device names that are illegal as a file
// stem regardless of extension. Matched case-insensitively.
var reservedDeviceNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// Sanitize converts an arbitrary string into a filename fragment that is
// legal on every target platform. The input is NFC-normalized first so the
// byte budget downstream applies to a canonical encoding. Empty results
// become "untitled"; reserved device names gain an underscore prefix.
func Sanitize(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	name = unsafeReplacer.Replace(b.String())

	// Windows rejects trailing dots and spaces; leading whitespace is
	// trimmed for symmetry.
	name = strings.TrimLeft(name, " ")
	name = strings.TrimRight(name, " .")

	if name == "" {
		return "untitled"
	}
	if isReservedDeviceName(name) {
		return "_" + name
	}
	return name
}

func isReservedDeviceName(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	_, reserved := reservedDeviceNames[strings.ToLower(stem)]
	return reserved
}

// TruncateToByteBudget shortens name so its UTF-8 encoding fits within
// maxBytes minus reservedSuffixBytes, cutting only at rune boundaries. When
// truncation is needed the tail of the name is preserved alongside a leading
// prefix, so trailing sequence markers stay visible.
func TruncateToByteBudget(name string, maxBytes, reservedSuffixBytes int) string {
	budget := maxBytes - reservedSuffixBytes
	if budget <= 0 {
		return ""
	}
	if len(name) <= budget {
		return name
	}

	const tailBytes = 16
	if budget <= tailBytes {
		return truncateRight(name, budget)
	}

	tail := tailRunes(name, tailBytes)
	head := truncateRight(name, budget-len(tail))
	return head + tail
}

// truncateRight keeps the longest rune-aligned prefix within budget bytes.
func truncateRight(name string, budget int) string {
	if len(name) <= budget {
		return name
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// tailRunes keeps the longest rune-aligned suffix within budget bytes.
func tailRunes(name string, budget int) string {
	if len(name) <= budget {
		return name
	}
	start := len(name) - budget
	for start < len(name) && !utf8.RuneStart(name[start]) {
		start++
	}
	return name[start:]
}

// CombineOptions controls how two name fragments are joined.
type CombineOptions struct {
	Separator string
	Suffix    string
	MaxBytes  int
}

// Combine sanitizes and joins two name fragments, reserving room for the
// separator and suffix up front so appending them can never overflow the
// byte budget. Each fragment receives half of the remaining budget.
func Combine(nameA, nameB string, opts CombineOptions) string {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxFilenameBytes
	}

	nameA = Sanitize(nameA)
	nameB = Sanitize(nameB)

	reserved := len(opts.Separator) + len(opts.Suffix)
	budget := maxBytes - reserved
	if budget <= 0 {
		return opts.Suffix
	}

	halfA := budget / 2
	halfB := budget - halfA
	if len(nameA) <= halfA {
		halfB = budget - len(nameA)
	} else if len(nameB) <= halfB {
		halfA = budget - len(nameB)
	}

	nameA = TruncateToByteBudget(nameA, halfA, 0)
	nameB = TruncateToByteBudget(nameB, halfB, 0)
	return nameA + opts.Separator + nameB + opts.Suffix
}
