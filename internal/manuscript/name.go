package manuscript

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

// MaxNameLength is the longest derived directory name.
const MaxNameLength = 26

// fallbackPrefix starts the name of a work whose title has no Latin letters
// or digits, e.g. a Greek or Hebrew title.
const fallbackPrefix = "ms-"

// illegalNameChars are characters that are not allowed in directory names on
// at least one supported platform.
const illegalNameChars = `\#%&{}<>*?/ $!'":@+` + "`|="

// DeriveName projects a work title onto a filesystem-safe directory name:
// accents are folded to their base letters, blocklisted characters and any
// other rune outside [a-z0-9_-] are dropped, the result is lowercased and
// truncated to MaxNameLength bytes.
//
// A title with letters or digits but none that survive, such as one written
// in Greek or Cyrillic, gets "ms-" followed by 16 hex digits of the BLAKE3
// hash of the title. A title without any letter or digit is an INVALID_INPUT
// error.
//
//	DeriveName("Köln Codex #7!!") // "kolncodex7"
func DeriveName(work string) (string, error) {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, work)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, work, "failed to normalize work title")
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if strings.ContainsRune(illegalNameChars, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	name := b.String()
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	if name == "" {
		if !strings.ContainsFunc(folded, isAlnum) {
			return "", errs.New(errs.ErrCodeInvalidInput, work, "work title has no characters usable in a directory name")
		}
		sum := blake3.Sum256([]byte(norm.NFC.String(strings.TrimSpace(work))))
		name = fallbackPrefix + hex.EncodeToString(sum[:8])
	}
	return name, nil
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
