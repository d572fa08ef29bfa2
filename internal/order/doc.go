// Package order implements the order aggregate: the single in-memory object
// owning all state for one in-progress order.
//
// An order carries two ordered sale-line channels, discount lines (coupons and
// deal codes) and product lines (priced products), plus a lifecycle status:
//
//	Draft -> Priced -> Paid -> Submitted
//	  any non-terminal state -> Failed
//
// Adding a line to a Priced or Paid order resets it to Draft and drops the
// attached payment, so a stale price can never be submitted. A Failed order
// re-enters Draft through Reopen or by changing its lines.
//
// Phase transitions (MarkPriced, AttachPayment, MarkSubmitted and the failure
// variants) are called by the placement coordinator only.
package order
