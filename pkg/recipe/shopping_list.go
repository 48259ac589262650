package recipe

import (
	"bytes"
	"fmt"

	"github.com/PavelDubrovin93/foodgram/domain"
)

// FormatShoppingList renders the consolidated cart as the plain-text
// export document, one "name:amountunit." line per entry. The format has
// no space between amount and unit.
func FormatShoppingList(items []domain.ShoppingListItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&buf, "%s:%d%s.\n", item.Name, item.TotalAmount, item.MeasurementUnit)
	}
	return buf.Bytes()
}
