package hashdb

import (
	"fmt"

	"github.com/mogaika/stingray_extractor/config"
	"github.com/mogaika/stingray_extractor/stingray"
)

// Translator resolves asset ids and types into display names. Strings is the
// shared fallback consulted by both.
type Translator struct {
	Names   Stack
	Types   Stack
	Strings Stack
}

func NewTranslator(d config.Dictionaries) *Translator {
	t := &Translator{}
	t.Names.LoadFiles(d.Names...)
	t.Types.LoadFiles(d.Types...)
	t.Strings.LoadFiles(d.Strings...)
	return t
}

func (t *Translator) LookupName(id stingray.Hash) (string, bool) {
	if t == nil {
		return "", false
	}
	if s, ok := t.Names.Lookup(id); ok {
		return s, true
	}
	return t.Strings.Lookup(id)
}

func (t *Translator) LookupType(typ stingray.Hash) (string, bool) {
	if t != nil {
		if s, ok := t.Types.Lookup(typ); ok {
			return s, true
		}
		if s, ok := t.Strings.Lookup(typ); ok {
			return s, true
		}
	}
	return stingray.TypeName(typ)
}

func (t *Translator) LookupThin(h stingray.ThinHash) (string, bool) {
	if t == nil {
		return "", false
	}
	if s, ok := t.Names.LookupThin(h); ok {
		return s, true
	}
	return t.Strings.LookupThin(h)
}

// Name never fails: a miss yields the hash in hex.
func (t *Translator) Name(id stingray.Hash) string {
	if s, ok := t.LookupName(id); ok {
		return s
	}
	return id.String()
}

func (t *Translator) TypeName(typ stingray.Hash) string {
	if s, ok := t.LookupType(typ); ok {
		return s
	}
	return typ.String()
}

func (t *Translator) ThinName(h stingray.ThinHash) string {
	if s, ok := t.LookupThin(h); ok {
		return s
	}
	return h.String()
}

// Describe prints the hash in both byte orders followed by its name, if any.
func (t *Translator) Describe(h stingray.Hash) string {
	if s, ok := t.LookupName(h); ok {
		return fmt.Sprintf("%v (%v) %s", h, h.Swapped(), s)
	}
	if s, ok := t.LookupType(h); ok {
		return fmt.Sprintf("%v (%v) %s", h, h.Swapped(), s)
	}
	return fmt.Sprintf("%v (%v)", h, h.Swapped())
}
