// Package lots assigns progressive lot letters and duplicates lots.
package lots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"totem/model"
	"totem/normalize"
)

// AssignLetters gives every record of one code group a distinct lowercase
// letter. Records are walked oldest first; an existing single-letter
// LottoProgressivo is kept unless an older record already holds it.
func AssignLetters(group []model.InventoryRecord) map[string]string {
	ordered := make([]model.InventoryRecord, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return createdBefore(ordered[i], ordered[j])
	})

	used := make(map[rune]bool, len(ordered))
	out := make(map[string]string, len(ordered))
	for _, rec := range ordered {
		letter, ok := existingLetter(rec)
		if !ok || used[letter] {
			letter = smallestUnused(used)
		}
		used[letter] = true
		out[rec.ID] = string(letter)
	}
	return out
}

// createdBefore orders by Created; records without a parseable Created sort
// after dated ones and by numeric id, then by raw id. Undated records are
// never interleaved with dated ones by id: an id is not a timestamp.
func createdBefore(a, b model.InventoryRecord) bool {
	ta := normalize.TimeValue(a.Fields[model.FieldCreated])
	tb := normalize.TimeValue(b.Fields[model.FieldCreated])
	switch {
	case ta != 0 && tb != 0 && ta != tb:
		return ta < tb
	case ta != 0 && tb == 0:
		return true
	case ta == 0 && tb != 0:
		return false
	}
	na, errA := strconv.ParseInt(strings.TrimSpace(a.ID), 10, 64)
	nb, errB := strconv.ParseInt(strings.TrimSpace(b.ID), 10, 64)
	if errA == nil && errB == nil && na != nb {
		return na < nb
	}
	if (errA == nil) != (errB == nil) {
		return errA == nil
	}
	return a.ID < b.ID
}

func existingLetter(rec model.InventoryRecord) (rune, bool) {
	raw := strings.ToLower(strings.TrimSpace(rec.Fields.String(model.FieldLottoProgressivo)))
	if len(raw) != 1 || raw[0] < 'a' || raw[0] > 'z' {
		return 0, false
	}
	return rune(raw[0]), true
}

// smallestUnused returns the first free letter from 'a'. Past 'z' it
// saturates at 'z'.
func smallestUnused(used map[rune]bool) rune {
	for r := 'a'; r <= 'z'; r++ {
		if !used[r] {
			return r
		}
	}
	return 'z'
}

// NextLetter proposes the designator of a new lot under an existing code:
// one past the highest letter in use, saturating at "Z".
func NextLetter(items []model.InventoryRecord, letters map[string]string, hint string) string {
	highest := 'A' - 1
	consider := func(s string) {
		if s == "" {
			return
		}
		r := rune(normalize.FormatLottoProg(s)[0])
		if r >= 'A' && r <= 'Z' && r > highest {
			highest = r
		}
	}
	for _, it := range items {
		consider(letters[it.ID])
	}
	consider(hint)

	next := min('Z', highest+1)
	if next < 'A' {
		next = 'A'
	}
	return string(next)
}

// ExtractProgLetter returns the first letter of s, uppercased.
func ExtractProgLetter(s string) string {
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return ""
}

// ColataPlaceholder is the proposed heat number of a new lot.
func ColataPlaceholder(prog string, now time.Time) string {
	return fmt.Sprintf("%s-%s", normalize.FormatLottoProg(prog), now.Format("20060102150405"))
}
