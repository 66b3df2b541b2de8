package ingest

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// nullMarker is the bulk-load representation of a missing value. It is
// written bare, never quoted, so loaders can tell it apart from the
// literal string "NULL".
const nullMarker = "NULL"

const columnSeparator = "|"

// escapeField quotes a field containing the column separator or a
// quote character, doubling embedded quotes. The rule applies
// uniformly to every table.
func escapeField(s string) string {
	if !strings.ContainsAny(s, `|"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func row(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapeField(f)
	}
	return strings.Join(escaped, columnSeparator) + "\n"
}

func nullableInt(v sql.NullInt64) string {
	if !v.Valid {
		return nullMarker
	}
	return strconv.FormatInt(v.Int64, 10)
}

func nullableString(v sql.NullString) string {
	if !v.Valid {
		return nullMarker
	}
	return escapeField(v.String)
}

// WriteFiles serializes the finalized context into pipe-delimited .dat
// files, one per table, suitable for bulk-loading.
func (c *Context) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	files := map[string]func(w *bufio.Writer) error{
		"Category.dat":     c.writeCategories,
		"Country.dat":      c.writeCountries,
		"Location.dat":     c.writeLocations,
		"User.dat":         c.writeUsers,
		"Item.dat":         c.writeItems,
		"ItemCategory.dat": c.writeItemCategories,
		"ItemSeller.dat":   c.writeItemSellers,
		"Bid.dat":          c.writeBids,
		"ItemBid.dat":      c.writeItemBids,
	}
	for name, write := range files {
		if err := writeFile(filepath.Join(dir, name), write); err != nil {
			return fmt.Errorf("error writing %s: %w", name, err)
		}
	}
	return nil
}

func writeFile(path string, write func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (c *Context) writeCategories(w *bufio.Writer) error {
	for _, r := range c.CategoryRows() {
		if _, err := w.WriteString(row(strconv.Itoa(r.Id), r.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeCountries(w *bufio.Writer) error {
	for _, r := range c.CountryRows() {
		if _, err := w.WriteString(row(strconv.Itoa(r.Id), r.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeLocations(w *bufio.Writer) error {
	for _, r := range c.Locations.Rows() {
		line := strconv.Itoa(r.Id) + columnSeparator + escapeField(r.Name) + columnSeparator + nullableInt(r.CountryId) + "\n"
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeUsers(w *bufio.Writer) error {
	for _, r := range c.Users.Rows() {
		line := escapeField(r.Id) + columnSeparator + escapeField(r.Rating) + columnSeparator + nullableInt(r.LocationId) + "\n"
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeItems(w *bufio.Writer) error {
	for _, r := range c.Items {
		fields := []string{
			escapeField(r.Id),
			escapeField(r.Name),
			escapeField(r.Currently),
			nullableString(r.BuyPrice),
			escapeField(r.FirstBid),
			strconv.Itoa(r.NumberOfBids),
			strconv.Itoa(r.LocationId),
			escapeField(r.Started),
			escapeField(r.Ends),
			escapeField(r.Description),
		}
		if _, err := w.WriteString(strings.Join(fields, columnSeparator) + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeItemCategories(w *bufio.Writer) error {
	for _, r := range c.ItemCategories {
		if _, err := w.WriteString(row(r.ItemId, strconv.Itoa(r.CategoryId))); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeItemSellers(w *bufio.Writer) error {
	for _, r := range c.ItemSellers {
		if _, err := w.WriteString(row(r.ItemId, r.SellerUserId)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeBids(w *bufio.Writer) error {
	for _, r := range c.Bids {
		if _, err := w.WriteString(row(strconv.Itoa(r.Id), r.BidderUserId, r.Time, r.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) writeItemBids(w *bufio.Writer) error {
	for _, r := range c.ItemBids {
		if _, err := w.WriteString(row(r.ItemId, strconv.Itoa(r.BidId))); err != nil {
			return err
		}
	}
	return nil
}
