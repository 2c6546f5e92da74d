package mappers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"totem/model"
)

var prefixNumber = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// CompareTitles orders product codes: blank codes last, PREFIX+digits codes
// by prefix then number, anything else by a natural compare where digit
// runs count as numbers.
func CompareTitles(a, b string) int {
	left := strings.ToUpper(strings.TrimSpace(a))
	right := strings.ToUpper(strings.TrimSpace(b))
	switch {
	case left == "" && right == "":
		return 0
	case left == "":
		return 1
	case right == "":
		return -1
	}
	ml := prefixNumber.FindStringSubmatch(left)
	mr := prefixNumber.FindStringSubmatch(right)
	if ml != nil && mr != nil {
		if c := strings.Compare(ml[1], mr[1]); c != 0 {
			return c
		}
		nl, errL := strconv.ParseFloat(ml[2], 64)
		nr, errR := strconv.ParseFloat(mr[2], 64)
		if errL == nil && errR == nil && nl != nr {
			if nl < nr {
				return -1
			}
			return 1
		}
	}
	return naturalCompare(left, right)
}

func naturalCompare(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			da := strings.TrimLeft(string(ra[si:i]), "0")
			db := strings.TrimLeft(string(rb[sj:j]), "0")
			if len(da) != len(db) {
				if len(da) < len(db) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(da, db); c != 0 {
				return c
			}
			continue
		}
		if ra[i] != rb[j] {
			if ra[i] < rb[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	}
	return 0
}

// GroupByTitle gathers records sharing a code (case and surrounding spaces
// ignored) into lot groups ordered by code. Records keep their input order
// inside a group.
func GroupByTitle(records []model.InventoryRecord) []model.LotGroup {
	index := map[string]int{}
	var groups []model.LotGroup
	for _, r := range records {
		key := strings.ToUpper(r.Title())
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.LotGroup{Title: r.Title()})
		}
		groups[i].Items = append(groups[i].Items, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return CompareTitles(groups[i].Title, groups[j].Title) < 0
	})
	return groups
}
