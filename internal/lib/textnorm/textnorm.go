// Package textnorm приводит строки к виду, пригодному для поиска:
// нижний регистр и удаление диакритики.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold переводит строку в нижний регистр, раскладывает символы (NFD)
// и удаляет комбинируемые знаки, так что "Éphy" и "ephy" совпадают.
func Fold(s string) string {
	s = strings.ToLower(s)
	// transform.Chain не потокобезопасен, создаём на каждый вызов
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
