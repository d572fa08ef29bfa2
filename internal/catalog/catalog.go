package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/mcpizza/pkg/types"
)

// Kind selects the sale-line channel a request is classified into
type Kind string

const (
	KindDiscount          Kind = "discount"
	KindCustomizedProduct Kind = "customized_product"
)

// Request is the raw line item a tool caller asked for.
// Code is used by KindDiscount; Size, Crust and Toppings by KindCustomizedProduct.
type Request struct {
	Code     string
	Size     string
	Crust    string
	Toppings []string
	Quantity int // 0 means 1
	Options  map[string]map[string]string
}

// WholePizza is the placement used for every topping: whole pizza, normal amount
var WholePizza = map[string]string{"1/1": "1"}

// Term is one vocabulary entry; Token is the provider encoding when it differs from Code
type Term struct {
	Code  string `json:"code"`
	Token string `json:"-"`
	Name  string `json:"name"`
}

var sizes = []Term{
	{Code: "10", Name: "small"},
	{Code: "12", Name: "medium"},
	{Code: "14", Name: "large"},
	{Code: "16", Name: "extra large"},
}

var crusts = []Term{
	{Code: "HAND", Token: "HAND", Name: "hand tossed"},
	{Code: "NPAN", Token: "PAZA", Name: "handmade pan"},
	{Code: "THIN", Token: "THIN", Name: "crunchy thin"},
	{Code: "BROOKLYN", Token: "BK", Name: "brooklyn style"},
	{Code: "GLUTENF", Token: "GLUTENF", Name: "gluten free"},
}

// Toppings are listed in encoding order
var toppings = []Term{
	{Code: "X", Name: "robust tomato sauce"},
	{Code: "C", Name: "cheese"},
	{Code: "P", Name: "pepperoni"},
	{Code: "S", Name: "italian sausage"},
	{Code: "B", Name: "beef"},
	{Code: "H", Name: "ham"},
	{Code: "K", Name: "bacon"},
	{Code: "Pm", Name: "philly steak"},
	{Code: "Du", Name: "premium chicken"},
	{Code: "Sa", Name: "salami"},
	{Code: "M", Name: "mushrooms"},
	{Code: "O", Name: "onions"},
	{Code: "G", Name: "green peppers"},
	{Code: "R", Name: "black olives"},
	{Code: "N", Name: "pineapple"},
	{Code: "J", Name: "jalapeno peppers"},
	{Code: "Z", Name: "banana peppers"},
	{Code: "Td", Name: "diced tomatoes"},
	{Code: "Si", Name: "spinach"},
	{Code: "Rr", Name: "roasted red peppers"},
	{Code: "Fe", Name: "feta cheese"},
	{Code: "E", Name: "cheddar cheese"},
	{Code: "Cp", Name: "shredded provolone"},
	{Code: "Cs", Name: "shredded parmesan asiago"},
}

var (
	sizeIndex    = indexTerms(sizes)
	crustIndex   = indexTerms(crusts)
	toppingIndex = indexTerms(toppings)
)

func indexTerms(terms []Term) map[string]int {
	idx := make(map[string]int, len(terms))
	for i, t := range terms {
		idx[t.Code] = i
	}
	return idx
}

// Sizes returns the recognised pizza sizes
func Sizes() []Term { return append([]Term(nil), sizes...) }

// Crusts returns the recognised crusts
func Crusts() []Term { return append([]Term(nil), crusts...) }

// Toppings returns the recognised toppings in encoding order
func Toppings() []Term { return append([]Term(nil), toppings...) }

// Codes lists the Code of each term, for schema enums
func Codes(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Code
	}
	return out
}

// Classify maps a requested line item to its sale-line entry.
//
// For KindDiscount the code is used as given. For KindCustomizedProduct a
// product code is synthesized as "P" + size + "I" + crust token, followed by
// "+" and one token per distinct topping in vocabulary order, so re-ordering
// or repeating toppings yields the same code. Unknown vocabulary and empty
// topping sets fail with types.ErrInvalidSpecification.
func Classify(kind Kind, req Request) (types.SaleLine, error) {
	qty, err := quantity(req.Quantity)
	if err != nil {
		return types.SaleLine{}, err
	}

	switch kind {
	case KindDiscount:
		code := strings.TrimSpace(req.Code)
		if code == "" {
			return types.SaleLine{}, types.InvalidField("code", "cannot be empty")
		}
		line := types.SaleLine{Code: code, Quantity: qty, Options: req.Options}
		return line.Clone(), nil

	case KindCustomizedProduct:
		return encodeProduct(req, qty)

	default:
		return types.SaleLine{}, fmt.Errorf("%w: unknown kind %q", types.ErrInvalidSpecification, kind)
	}
}

func encodeProduct(req Request, qty int) (types.SaleLine, error) {
	size := strings.TrimSpace(req.Size)
	if _, ok := sizeIndex[size]; !ok {
		return types.SaleLine{}, fmt.Errorf("%w: unknown size %q (allowed %s)",
			types.ErrInvalidSpecification, req.Size, strings.Join(Codes(sizes), ", "))
	}

	crustPos, ok := crustIndex[strings.ToUpper(strings.TrimSpace(req.Crust))]
	if !ok {
		return types.SaleLine{}, fmt.Errorf("%w: unknown crust %q (allowed %s)",
			types.ErrInvalidSpecification, req.Crust, strings.Join(Codes(crusts), ", "))
	}

	if len(req.Toppings) == 0 {
		return types.SaleLine{}, fmt.Errorf("%w: customized product needs at least one topping; use a simple line for plain items",
			types.ErrInvalidSpecification)
	}

	seen := make(map[int]struct{}, len(req.Toppings))
	positions := make([]int, 0, len(req.Toppings))
	for _, raw := range req.Toppings {
		pos, ok := toppingIndex[strings.TrimSpace(raw)]
		if !ok {
			return types.SaleLine{}, fmt.Errorf("%w: unknown topping %q", types.ErrInvalidSpecification, raw)
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	var b strings.Builder
	b.WriteString("P")
	b.WriteString(size)
	b.WriteString("I")
	b.WriteString(crusts[crustPos].Token)

	options := make(map[string]map[string]string, len(positions))
	for _, pos := range positions {
		code := toppings[pos].Code
		b.WriteString(types.ProductCodeSeparator)
		b.WriteString(code)
		options[code] = map[string]string{"1/1": WholePizza["1/1"]}
	}

	return types.SaleLine{Code: b.String(), Quantity: qty, Options: options}, nil
}

func quantity(q int) (int, error) {
	switch {
	case q < 0:
		return 0, types.InvalidField("quantity", "must be >= 1")
	case q == 0:
		return 1, nil
	default:
		return q, nil
	}
}

// SizeName returns the human name for a size code, or the code itself
func SizeName(code string) string {
	if i, ok := sizeIndex[code]; ok {
		return sizes[i].Name
	}
	return code
}

// ToppingName returns the human name for a topping code, or the code itself
func ToppingName(code string) string {
	if i, ok := toppingIndex[code]; ok {
		return toppings[i].Name
	}
	return code
}
