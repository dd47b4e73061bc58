package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const UTF8 = "UTF-8"

// nil means UTF-8
var currentCharMap *charmap.Charmap

func SetEncoding(name string) error {
	if name == "" || strings.EqualFold(name, UTF8) || strings.EqualFold(name, "utf8") {
		currentCharMap = nil
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if strings.EqualFold(cm.String(), name) {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := []string{UTF8}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}

// TextDecoder returns a fresh transformer for dictionary text. A leading
// UTF-8 or UTF-16 BOM always wins over the configured encoding.
func TextDecoder() transform.Transformer {
	if cm := currentCharMap; cm != nil {
		return unicode.BOMOverride(cm.NewDecoder())
	}
	return unicode.BOMOverride(unicode.UTF8.NewDecoder())
}
