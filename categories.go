package rebalance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

// categoriesFile lists the categories of the flat layout with their ratio.
const categoriesFile = "_categories"

// loadCategories converts the flat, two level, target layout of a directory into a
// category table.
//
// The "_categories" file has the columns Category and Ratio. Each category has its own file
// named after it, with the columns yf_name (or Tag) and p_desired, plus an optional Asset
// (or Product) display name and Unit. Ratios and p_desired are fractions summing to 1.
func loadCategories(dir string) (*Table, error) {
	path, err := FindFile(dir, categoriesFile)
	if err != nil {
		return nil, err
	}
	cats, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	catCol, err := cats.require("Category")
	if err != nil {
		return nil, err
	}
	ratioCol, err := cats.require("Ratio")
	if err != nil {
		return nil, err
	}

	ratios := make([]float64, len(cats.Rows))
	for i, r := range cats.Rows {
		if ratios[i], err = strconv.ParseFloat(r[ratioCol], 64); err != nil {
			return nil, cats.schemaError(i, "Ratio", fmt.Errorf("invalid ratio %q", r[ratioCol]))
		}
	}
	// Ratios are fractions when they sum to 1, percents otherwise.
	scale := 1.0
	if math.Abs(lo.Sum(ratios)-1) < 1e-5 {
		scale = 100
	}

	out := &Table{Source: dir, Header: []string{"L1", "L2", "p_L1", "p_L2", "Tag", "Product", "Unit"}}
	for i, r := range cats.Rows {
		category := r[catCol]
		path, err := FindFile(dir, category)
		if err != nil {
			return nil, cats.schemaError(i, "Category", err)
		}
		t, err := LoadTable(path)
		if err != nil {
			return nil, err
		}
		tagCol, err := t.require("yf_name", "Tag")
		if err != nil {
			return nil, err
		}
		desiredCol, err := t.require("p_desired")
		if err != nil {
			return nil, err
		}
		nameCol, unitCol := t.Column("Asset", "Product"), t.Column("Unit")

		sum := 0.0
		for j, row := range t.Rows {
			tag := row[tagCol]
			desired, err := strconv.ParseFloat(row[desiredCol], 64)
			if tag == "" || err != nil {
				return nil, t.schemaError(j, "", fmt.Errorf("yf_name and p_desired are required"))
			}
			sum += desired

			name, unit := "", ""
			if nameCol >= 0 {
				name = row[nameCol]
			}
			if unitCol >= 0 {
				unit = row[unitCol]
			}
			out.Rows = append(out.Rows, []string{
				category,
				lo.Ternary(name != "", name, tag),
				strconv.FormatFloat(ratios[i]*scale, 'f', -1, 64),
				strconv.FormatFloat(desired*100, 'f', -1, 64),
				tag, name, unit,
			})
		}
		if math.Round(sum*1e5)/1e5 != 1 {
			return nil, t.schemaError(-1, "p_desired", fmt.Errorf("desired weights sum to %v, want 1", sum))
		}
	}
	return out, nil
}
