package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionType names a cart mutation.
type ActionType string

const (
	ActionAddItem     ActionType = "ADD_ITEM"
	ActionSetQuantity ActionType = "SET_QUANTITY"
	ActionRemoveItem  ActionType = "REMOVE_ITEM"
	ActionClear       ActionType = "CLEAR"
)

var ErrUnknownAction = errors.New("cart: unknown action")

// Product is the catalog snapshot an ADD_ITEM action carries.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Stock int
}

// Action is one typed mutation. Only the fields relevant to Type are read.
type Action struct {
	Type      ActionType
	Product   Product   // ADD_ITEM
	ProductID uuid.UUID // SET_QUANTITY, REMOVE_ITEM
	Quantity  int       // SET_QUANTITY
}

func AddItem(p Product) Action { return Action{Type: ActionAddItem, Product: p} }

func SetQuantity(productID uuid.UUID, quantity int) Action {
	return Action{Type: ActionSetQuantity, ProductID: productID, Quantity: quantity}
}

func RemoveItem(productID uuid.UUID) Action {
	return Action{Type: ActionRemoveItem, ProductID: productID}
}

func Clear() Action { return Action{Type: ActionClear} }

// Reduce applies a to c and returns the new cart. The input cart is never modified.
// A non-empty notice means the action was refused or adjusted; the cart is still valid.
func Reduce(c Cart, a Action) (Cart, string, error) {
	switch a.Type {
	case ActionAddItem:
		next, notice := addItem(c, a.Product)
		return next, notice, nil
	case ActionSetQuantity:
		next, notice := setQuantity(c, a.ProductID, a.Quantity)
		return next, notice, nil
	case ActionRemoveItem:
		return removeItem(c, a.ProductID), "", nil
	case ActionClear:
		return Cart{Lines: []Line{}}, "", nil
	default:
		return c, "", fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

func addItem(c Cart, p Product) (Cart, string) {
	if i := c.indexOf(p.ID); i >= 0 {
		if c.Lines[i].Quantity >= p.Stock {
			return c, fmt.Sprintf("cannot add %s: only %d in stock", p.Name, p.Stock)
		}
		next := c.clone()
		next.Lines[i].Quantity++
		next.Lines[i].StockAtAddTime = p.Stock
		return next, ""
	}
	if p.Stock <= 0 {
		return c, fmt.Sprintf("cannot add %s: out of stock", p.Name)
	}
	next := c.clone()
	next.Lines = append(next.Lines, Line{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPrice:      p.Price,
		Quantity:       1,
		StockAtAddTime: p.Stock,
	})
	return next, ""
}

func setQuantity(c Cart, productID uuid.UUID, quantity int) (Cart, string) {
	i := c.indexOf(productID)
	if i < 0 {
		return c, ""
	}
	if quantity <= 0 {
		return removeItem(c, productID), ""
	}
	next := c.clone()
	line := &next.Lines[i]
	notice := ""
	if quantity > line.StockAtAddTime {
		quantity = line.StockAtAddTime
		notice = fmt.Sprintf("only %d of %s in stock", line.StockAtAddTime, line.Name)
	}
	line.Quantity = quantity
	return next, notice
}

func removeItem(c Cart, productID uuid.UUID) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}
