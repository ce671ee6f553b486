package sqlbuild

import (
	"strings"
	"unicode/utf8"

	"github.com/koustreak/dbframe/internal/errs"
)

// ValidateIdentifier checks that name can be used as a quoted identifier of
// the given kind ("schema", "table", "column"). Any character is allowed
// except NUL, because every identifier is quoted.
func (b Builder) ValidateIdentifier(kind, name string) error {
	if name == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid %s name: empty", kind)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid %s name %q: contains NUL", kind, name)
	}
	if !utf8.ValidString(name) {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid %s name %q: not valid UTF-8", kind, name)
	}
	if limit := b.d.MaxIdentifierLen(); len(name) > limit {
		return errs.Newf(errs.ErrKindInvalidInput,
			"invalid %s name %q: longer than %d bytes", kind, name, limit)
	}
	return nil
}
