package extract

import (
	"strconv"
	"strings"

	"github.com/ticketscan/ticketscan/constants"
	"github.com/ticketscan/ticketscan/internal/entity"
	"github.com/ticketscan/ticketscan/internal/normalize"
)

// maxItems is a safety bound against pathological OCR noise producing
// hundreds of spurious "items".
const maxItems = 20

// matchItems parses line items. Three shapes are tried per line, in order:
// "qty x name price", "name qty x price", "name price". A parsed item needs
// a name of at least 2 characters and a positive total price or it is
// discarded; items carry no confidence.
func matchItems(pt *patternTable, dc *docContext) []entity.ReceiptItem {
	var items []entity.ReceiptItem
	for _, line := range dc.lines {
		line = strings.TrimSpace(line)
		if line == "" || excludedItemLine(pt, line) {
			continue
		}
		if item, ok := parseItemLine(pt, line); ok {
			items = append(items, item)
		}
	}
	return dedupeItems(items)
}

func excludedItemLine(pt *patternTable, line string) bool {
	for _, re := range pt.itemExclude {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func parseItemLine(pt *patternTable, line string) (entity.ReceiptItem, bool) {
	if m := pt.itemQtyFirst.FindStringSubmatch(line); m != nil {
		qty, _ := strconv.ParseFloat(m[1], 64)
		return buildItem(m[2], qty, m[3])
	}
	if m := pt.itemQtyMid.FindStringSubmatch(line); m != nil {
		// "name qty x price" quotes the unit price, not the line total
		qty, _ := strconv.ParseFloat(m[2], 64)
		unit := normalize.ParseAmount(m[3])
		return buildUnitPricedItem(m[1], qty, unit)
	}
	if m := pt.itemBare.FindStringSubmatch(line); m != nil {
		return buildItem(m[1], 1, m[2])
	}
	return entity.ReceiptItem{}, false
}

func buildItem(rawName string, qty float64, rawPrice string) (entity.ReceiptItem, bool) {
	name := cleanItemName(rawName)
	total := normalize.ParseAmount(rawPrice)
	if len([]rune(name)) < 2 || total <= 0 {
		return entity.ReceiptItem{}, false
	}
	if qty <= 0 {
		qty = 1
	}
	item := entity.ReceiptItem{
		Name:       name,
		Quantity:   qty,
		TotalPrice: total,
		Category:   string(constants.CategorizeItem(name)),
	}
	if qty > 1 {
		unit := total / qty
		item.UnitPrice = &unit
	}
	return item, true
}

func buildUnitPricedItem(rawName string, qty, unit float64) (entity.ReceiptItem, bool) {
	name := cleanItemName(rawName)
	if qty <= 0 {
		qty = 1
	}
	total := unit * qty
	if len([]rune(name)) < 2 || total <= 0 {
		return entity.ReceiptItem{}, false
	}
	return entity.ReceiptItem{
		Name:       name,
		Quantity:   qty,
		UnitPrice:  &unit,
		TotalPrice: total,
		Category:   string(constants.CategorizeItem(name)),
	}, true
}

func cleanItemName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, ".,;:-_*#@ ")
	return name
}

// dedupeItems merges near-duplicate items on the (lowercased name, total
// price) key; on collision the entry with the higher quantity wins.
// First-seen order is preserved and the output is capped, which makes the
// operation idempotent.
func dedupeItems(items []entity.ReceiptItem) []entity.ReceiptItem {
	type key struct {
		name  string
		total float64
	}
	index := make(map[key]int, len(items))
	out := make([]entity.ReceiptItem, 0, len(items))
	for _, item := range items {
		k := key{name: strings.ToLower(item.Name), total: item.TotalPrice}
		if at, ok := index[k]; ok {
			if item.Quantity > out[at].Quantity {
				out[at] = item
			}
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	if len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}
