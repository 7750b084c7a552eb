package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrentVersion is the envelope version Encode writes.
//
//	v0: bare JSON array of camelCase lines (no envelope)
//	v1: {"version":1,"lines":[...]} single cart
//	v2: {"version":2,"active":"...","carts":{"name":{"lines":[...]}}}
const CurrentVersion = 2

var (
	ErrUnsupportedVersion = errors.New("cart: unsupported draft version")
	ErrMalformedDrafts    = errors.New("cart: malformed draft payload")
)

// Drafts are the named carts a user keeps open, plus which one is active.
type Drafts struct {
	Active string
	Carts  map[string]Cart
}

// NewDrafts returns a single empty default cart.
func NewDrafts() Drafts {
	return Drafts{Active: DefaultName, Carts: map[string]Cart{DefaultName: {Lines: []Line{}}}}
}

// Get returns the named cart, or an empty one.
func (d Drafts) Get(name string) Cart {
	if c, ok := d.Carts[name]; ok {
		return c
	}
	return Cart{Lines: []Line{}}
}

// With returns a copy of d with name set to c.
func (d Drafts) With(name string, c Cart) Drafts {
	next := d.copyCarts()
	next.Carts[name] = c
	if next.Active == "" {
		next.Active = name
	}
	return next
}

// Without returns a copy of d with name removed. Removing the active cart moves Active
// to the first remaining name; removing the last cart leaves an empty default.
func (d Drafts) Without(name string) Drafts {
	next := d.copyCarts()
	delete(next.Carts, name)
	if len(next.Carts) == 0 {
		return NewDrafts()
	}
	if _, ok := next.Carts[next.Active]; !ok {
		next.Active = next.Names()[0]
	}
	return next
}

// Names returns the cart names in lexical order.
func (d Drafts) Names() []string {
	names := make([]string, 0, len(d.Carts))
	for n := range d.Carts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d Drafts) copyCarts() Drafts {
	carts := make(map[string]Cart, len(d.Carts)+1)
	for k, v := range d.Carts {
		carts[k] = v
	}
	return Drafts{Active: d.Active, Carts: carts}
}

type envelopeV2 struct {
	Version int             `json:"version"`
	Active  string          `json:"active"`
	Carts   map[string]Cart `json:"carts"`
}

type envelopeV1 struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

// legacyLine is the pre-envelope shape terminals stored before drafts were versioned.
type legacyLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// Encode serializes d at CurrentVersion.
func Encode(d Drafts) ([]byte, error) {
	env := envelopeV2{Version: CurrentVersion, Active: d.Active, Carts: d.Carts}
	if env.Carts == nil {
		env.Carts = map[string]Cart{}
	}
	return json.Marshal(env)
}

// Decode reads any known draft version and upgrades it to the current shape.
// Lines that violate cart invariants are dropped or clamped rather than failing the load.
// An empty payload decodes to NewDrafts.
func Decode(data []byte) (Drafts, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NewDrafts(), nil
	}

	if data[0] == '[' {
		var legacy []legacyLine
		if err := json.Unmarshal(data, &legacy); err != nil {
			return Drafts{}, fmt.Errorf("%w: %v", ErrMalformedDrafts, err)
		}
		return single(upgradeLegacy(legacy)), nil
	}

	var header struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Drafts{}, fmt.Errorf("%w: %v", ErrMalformedDrafts, err)
	}
	version := 1
	if header.Version != nil {
		version = *header.Version
	}

	switch {
	case version == 1:
		var env envelopeV1
		if err := json.Unmarshal(data, &env); err != nil {
			return Drafts{}, fmt.Errorf("%w: %v", ErrMalformedDrafts, err)
		}
		return single(env.Lines), nil
	case version == 2:
		var env envelopeV2
		if err := json.Unmarshal(data, &env); err != nil {
			return Drafts{}, fmt.Errorf("%w: %v", ErrMalformedDrafts, err)
		}
		return fromV2(env), nil
	case version > CurrentVersion:
		return Drafts{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	default:
		return Drafts{}, fmt.Errorf("%w: version %d", ErrMalformedDrafts, version)
	}
}

func upgradeLegacy(legacy []legacyLine) []Line {
	lines := make([]Line, 0, len(legacy))
	for _, l := range legacy {
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			continue
		}
		lines = append(lines, Line{
			ProductID:      id,
			Name:           l.Name,
			UnitPrice:      l.Price,
			Quantity:       l.Quantity,
			StockAtAddTime: l.Stock,
		})
	}
	return lines
}

func single(lines []Line) Drafts {
	return Drafts{Active: DefaultName, Carts: map[string]Cart{DefaultName: {Lines: sanitize(lines)}}}
}

func fromV2(env envelopeV2) Drafts {
	d := Drafts{Active: env.Active, Carts: make(map[string]Cart, len(env.Carts))}
	for name, c := range env.Carts {
		if name == "" {
			continue
		}
		d.Carts[name] = Cart{Lines: sanitize(c.Lines)}
	}
	if len(d.Carts) == 0 {
		return NewDrafts()
	}
	if _, ok := d.Carts[d.Active]; !ok {
		d.Active = d.Names()[0]
	}
	return d
}

// sanitize enforces: one line per product, quantity ≥ 1, quantity ≤ stockAtAddTime,
// non-negative price.
func sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	seen := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil || l.Quantity < 1 || l.UnitPrice.IsNegative() {
			continue
		}
		if i, ok := seen[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			if l.StockAtAddTime > out[i].StockAtAddTime {
				out[i].StockAtAddTime = l.StockAtAddTime
			}
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}

	kept := out[:0]
	for _, l := range out {
		if l.Quantity > l.StockAtAddTime {
			l.Quantity = l.StockAtAddTime
		}
		if l.Quantity < 1 {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
