package console

import (
	"fmt"
	"io"
	"text/tabwriter"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderBanners escribe los banners visibles de una vista.
func RenderBanners(w io.Writer, success, errMsg string) {
	if success != "" {
		fmt.Fprintln(w, "✅ "+success)
	}
	if errMsg != "" {
		fmt.Fprintln(w, "❌ "+errMsg)
	}
}

// mark prefijo de la fila resaltada tras guardar.
func mark(highlighted bool) string {
	if highlighted {
		return "*"
	}
	return " "
}

// RenderCategories tabla de categorías.
func RenderCategories(w io.Writer, rows []CategoryRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, MsgNoCategories)
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, " \tID\tNOMBRE\tDESCRIPCIÓN\tPRODUCTOS\tESTADO\tACCIÓN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d productos\t%s\t%s\n",
			mark(r.Highlighted), r.ID, r.Name, r.Description, r.Products, r.Status, r.Action)
	}
	return tw.Flush()
}

// RenderProducts tabla de productos.
func RenderProducts(w io.Writer, rows []ProductRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, MsgNoProducts)
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, " \tID\tNOMBRE\tCATEGORÍA\tPRECIO\tDESC.\tFINAL\tSTOCK\tESTADO")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\t%d\t%s\n",
			mark(r.Highlighted), r.ID, r.Name, r.Category,
			r.Price.StringFixed(2), r.Discount, r.EffectivePrice.StringFixed(2), r.Stock, r.Status)
	}
	return tw.Flush()
}
