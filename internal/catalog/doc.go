// Package catalog classifies requested line items into sale-line channels.
//
// Classify is a pure function: identical inputs always produce the identical
// sale line, and it performs no I/O. It is the only place customized product
// codes are synthesized.
//
// # Basic Usage
//
//	line, err := catalog.Classify(catalog.KindCustomizedProduct, catalog.Request{
//	    Size:     "12",
//	    Crust:    "NPAN",
//	    Toppings: []string{"S", "P"},
//	})
//	// line.Code    == "P12IPAZA+P+S"
//	// line.Options == {"P": {"1/1": "1"}, "S": {"1/1": "1"}}
//
//	coupon, err := catalog.Classify(catalog.KindDiscount, catalog.Request{Code: "9204"})
//
// # Encoding
//
//	product-code := "P" size "I" crust-token *( "+" topping )
//
// Toppings are deduplicated and written in vocabulary order. Crust codes map
// to provider tokens (NPAN -> PAZA, BROOKLYN -> BK). Unknown sizes, crusts or
// toppings are rejected rather than dropped.
package catalog
