package rebalance

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/rebalance/date"
)

// levelRE matches level column names: L1, L2, ...
var levelRE = regexp.MustCompile(`^L(\d+)$`)

// weightTolerance is the accepted error on weight sums.
const weightTolerance = 1e-6

// Target is a leaf of the target allocation: an instrument and the share of the
// portfolio it should represent.
type Target struct {
	Instrument
	Path   []string // category labels from the top level down
	Weight Percent  // overall weight, all targets sum to 100

	labels  []string  // labels of its row, blanks included
	weights []float64 // filled weights of its row, NaN when missing

	// Market data, resolved by Allocation.Price.
	Price float64 // unit price in Unit
	Rate  float64 // exchange rate from Unit to the reference currency
}

// Node is a category of the target allocation tree.
type Node struct {
	Label     string
	Weight    float64 // local weight among its siblings, in percent
	HasWeight bool
	Overall   Percent // sum of the overall weights of all targets below

	Children []*Node
	Targets  []*Target // targets directly attached to this category
}

// Allocation is the normalized target allocation built from a category table.
type Allocation struct {
	levels  int
	root    *Node
	nodes   map[string]*Node // index by path key
	targets []*Target        // sorted by descending weight
}

// pathKey identifies a node by its path.
func pathKey(path []string) string { return strings.Join(path, "\x1f") }

// row is a decoded line of the category table.
type row struct {
	line    int
	labels  []string
	weights []float64 // NaN when missing
	target  Target
}

// BuildAllocation computes the overall weight of each leaf instrument of a category table.
//
// The table has level columns L1..Ln with matching weight columns p_L1..p_Ln (in percent), a
// Tag column with the instrument identifier, and optional Product and Unit columns.
// Missing weights are copied from the first row of the same category that declares one.
//
// In strict mode, inconsistent categories (no weight at all, conflicting weights, or
// children not summing to 100) are errors; otherwise they are logged and the final
// renormalization absorbs them.
func BuildAllocation(t *Table, strict bool) (*Allocation, error) {
	rows, levels, err := decodeTargets(t)
	if err != nil {
		return nil, err
	}
	if err := fillWeights(t, rows, levels, strict); err != nil {
		return nil, err
	}

	// overall weight: product of the declared weights, missing ones are skipped.
	products := make([]float64, len(rows))
	dups := make(map[string]int)
	for i, r := range rows {
		p := 1.0
		for _, w := range r.weights {
			if !math.IsNaN(w) {
				p *= w / 100
			}
		}
		products[i] = p
		dups[pathKey(r.labels)]++
	}
	sum := 0.0
	for i, r := range rows {
		products[i] /= float64(dups[pathKey(r.labels)])
		sum += products[i]
	}
	if sum <= 0 {
		return nil, t.schemaError(-1, "", fmt.Errorf("target weights sum to zero"))
	}

	a := &Allocation{
		levels: levels,
		root:   &Node{Label: "", Weight: 100, HasWeight: true},
		nodes:  make(map[string]*Node),
	}
	a.nodes[pathKey(nil)] = a.root
	for i, r := range rows {
		tg := r.target
		tg.Path = trimPath(r.labels)
		tg.labels, tg.weights = slices.Clone(r.labels), slices.Clone(r.weights)
		tg.Weight = Percent(products[i] * 100 / sum)
		a.targets = append(a.targets, &tg)
		a.attach(&tg, r.weights)
	}
	slices.SortStableFunc(a.targets, func(x, y *Target) int { return cmp.Compare(y.Weight, x.Weight) })

	if err := a.checkSums(t, strict); err != nil {
		return nil, err
	}
	return a, nil
}

// decodeTargets validates the table schema and decodes its rows.
func decodeTargets(t *Table) (rows []row, levels int, err error) {
	levelCols := make(map[int]int) // level number -> column
	for j, h := range t.Header {
		if m := levelRE.FindStringSubmatch(h); m != nil {
			n, _ := strconv.Atoi(m[1])
			levelCols[n] = j
		}
	}
	levels = len(levelCols)
	if levels == 0 {
		return nil, 0, t.schemaError(-1, "L1", ErrMissingColumn)
	}
	for n := 1; n <= levels; n++ {
		if _, ok := levelCols[n]; !ok {
			return nil, 0, t.schemaError(-1, fmt.Sprintf("L%d", n), fmt.Errorf("levels must be numbered L1..L%d: %w", levels, ErrMissingColumn))
		}
	}
	weightCols := make([]int, levels+1)
	for j, h := range t.Header {
		name, ok := strings.CutPrefix(h, "p_")
		if !ok || name == "overall" {
			continue
		}
		m := levelRE.FindStringSubmatch(name)
		if m == nil {
			return nil, 0, t.schemaError(-1, h, fmt.Errorf("weight column must be named p_L<level>"))
		}
		n, _ := strconv.Atoi(m[1])
		if n < 1 || n > levels {
			return nil, 0, t.schemaError(-1, h, fmt.Errorf("weight column for an unknown level"))
		}
		weightCols[n] = j + 1 // 0 means absent
	}
	for n := 1; n <= levels; n++ {
		if weightCols[n] == 0 {
			return nil, 0, t.schemaError(-1, fmt.Sprintf("p_L%d", n), ErrMissingColumn)
		}
	}
	tagCol, err := t.require("Tag", "yf_name")
	if err != nil {
		return nil, 0, err
	}
	productCol, unitCol := t.Column("Product"), t.Column("Unit")

	for i, cells := range t.Rows {
		r := row{
			line:    t.Line(i),
			labels:  make([]string, levels),
			weights: make([]float64, levels),
		}
		for n := 1; n <= levels; n++ {
			r.labels[n-1] = cells[levelCols[n]]
			w, err := parseWeight(cells[weightCols[n]-1])
			if err != nil {
				return nil, 0, t.schemaError(i, t.Header[weightCols[n]-1], err)
			}
			r.weights[n-1] = w
		}
		r.target.ID = cells[tagCol]
		if r.target.ID == "" {
			return nil, 0, t.schemaError(i, t.Header[tagCol], fmt.Errorf("empty instrument"))
		}
		if productCol >= 0 {
			r.target.Product = cells[productCol]
		}
		if unitCol >= 0 {
			r.target.Unit = cells[unitCol]
		}
		rows = append(rows, r)
	}
	return rows, levels, nil
}

// parseWeight parses a percentage like "60", "12.5" or "12.5%". An empty cell is NaN.
func parseWeight(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return math.NaN(), nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	if w < 0 || w > 100 {
		return 0, fmt.Errorf("weight %v out of range [0, 100]", w)
	}
	return w, nil
}

// fillWeights copies, for each level, the first declared weight of a category to the rows
// of the same category that leave it blank.
func fillWeights(t *Table, rows []row, levels int, strict bool) error {
	for k := range levels {
		first := make(map[string]float64)
		for _, r := range rows {
			if !complete(r.labels, k) || math.IsNaN(r.weights[k]) {
				continue
			}
			key := pathKey(r.labels[:k+1])
			w, seen := first[key]
			if !seen {
				first[key] = r.weights[k]
				continue
			}
			if w != r.weights[k] {
				err := fmt.Errorf("conflicting weights %v and %v (line %d)", w, r.weights[k], r.line)
				if strict {
					return &SchemaError{Source: t.Source, Column: strings.Join(r.labels[:k+1], "/"), Err: err}
				}
				slog.Warn("conflicting category weights, the first one is used", "category", strings.Join(r.labels[:k+1], "/"), "first", w, "other", r.weights[k])
			}
		}
		warned := make(map[string]bool)
		for i := range rows {
			r := &rows[i]
			if !complete(r.labels, k) {
				continue
			}
			key := pathKey(r.labels[:k+1])
			w, ok := first[key]
			switch {
			case ok:
				r.weights[k] = w
			case strict:
				return &SchemaError{Source: t.Source, Row: r.line, Column: strings.Join(r.labels[:k+1], "/"), Err: fmt.Errorf("category has no weight")}
			case !warned[key]:
				warned[key] = true
				slog.Warn("category has no weight, the level is ignored", "category", strings.Join(r.labels[:k+1], "/"))
			}
		}
	}
	return nil
}

// complete reports whether the labels of levels 0..k are all set.
func complete(labels []string, k int) bool {
	return !slices.Contains(labels[:k+1], "")
}

// trimPath returns the labels up to the first blank one.
func trimPath(labels []string) []string {
	if i := slices.Index(labels, ""); i >= 0 {
		labels = labels[:i]
	}
	return slices.Clone(labels)
}

// attach adds the target to the tree, creating the categories on its path.
func (a *Allocation) attach(tg *Target, weights []float64) {
	node := a.root
	node.Overall += tg.Weight
	for k := range tg.Path {
		key := pathKey(tg.Path[:k+1])
		child, ok := a.nodes[key]
		if !ok {
			child = &Node{Label: tg.Path[k]}
			if w := weights[k]; !math.IsNaN(w) {
				child.Weight, child.HasWeight = w, true
			}
			a.nodes[key] = child
			node.Children = append(node.Children, child)
		}
		child.Overall += tg.Weight
		node = child
	}
	node.Targets = append(node.Targets, tg)
}

// checkSums verifies that the declared weights of siblings sum to 100.
func (a *Allocation) checkSums(t *Table, strict bool) error {
	var walk func(path []string, n *Node) error
	walk = func(path []string, n *Node) error {
		sum, declared := 0.0, false
		for _, c := range n.Children {
			if c.HasWeight {
				sum += c.Weight
				declared = true
			}
		}
		if declared && math.Abs(sum-100) > weightTolerance {
			category := strings.Join(path, "/")
			if category == "" {
				category = "(top)"
			}
			if strict {
				return &SchemaError{Source: t.Source, Column: category, Err: fmt.Errorf("weights sum to %v, want 100", sum)}
			}
			slog.Warn("category weights do not sum to 100, they are renormalized", "category", category, "sum", sum)
		}
		for _, c := range n.Children {
			if err := walk(append(slices.Clip(path), c.Label), c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nil, a.root)
}

// Targets returns the targets sorted by descending overall weight.
func (a *Allocation) Targets() []*Target { return a.targets }

// Root returns the top of the category tree.
func (a *Allocation) Root() *Node { return a.root }

// Node returns the category at path, or nil.
func (a *Allocation) Node(path ...string) *Node { return a.nodes[pathKey(path)] }

// Target returns the first target for instrument id, or nil.
func (a *Allocation) Target(id string) *Target {
	i := slices.IndexFunc(a.targets, func(t *Target) bool { return t.ID == id })
	if i < 0 {
		return nil
	}
	return a.targets[i]
}

// Table returns the allocation as a category table, with filled weights and a p_overall
// column. Building an allocation from it gives the same overall weights.
func (a *Allocation) Table() *Table {
	t := &Table{Source: "allocation"}
	for n := 1; n <= a.levels; n++ {
		t.Header = append(t.Header, fmt.Sprintf("L%d", n))
	}
	for n := 1; n <= a.levels; n++ {
		t.Header = append(t.Header, fmt.Sprintf("p_L%d", n))
	}
	t.Header = append(t.Header, "Tag", "Product", "Unit", "p_overall")

	for _, tg := range a.targets {
		cells := make([]string, 2*a.levels, 2*a.levels+4)
		copy(cells, tg.labels)
		for k, w := range tg.weights {
			if !math.IsNaN(w) {
				cells[a.levels+k] = strconv.FormatFloat(w, 'f', -1, 64)
			}
		}
		cells = append(cells, tg.ID, tg.Product, tg.Unit, strconv.FormatFloat(float64(tg.Weight), 'f', -1, 64))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Price resolves the unit price and exchange rate of every target, as of a date (zero for
// the latest).
//
// The unit of a target is its own Unit, or the unit it is traded in the ledger, or the
// reference currency.
func (a *Allocation) Price(ctx context.Context, oracle PriceOracle, ledger *Ledger, currency string, on date.Date) error {
	for _, tg := range a.targets {
		if tg.Unit == "" && ledger != nil {
			tg.Unit = ledger.Unit(tg.ID)
		}
		if tg.Unit == "" {
			tg.Unit = currency
		}
		price, err := oracle.Price(ctx, tg.ID, on)
		if err != nil {
			return err
		}
		rate, err := oracle.Rate(ctx, tg.Unit, currency, on)
		if err != nil {
			return err
		}
		tg.Price, tg.Rate = price, rate
	}
	return nil
}
