// Package placement coordinates the three-phase commit of an order against
// the commerce gateway: price, attach payment, submit.
//
// Each phase checks the order's precondition before doing anything, so a
// local precondition error never changes the order. A remote rejection or
// transport failure ends the attempt with the order Failed and the raw
// result stored on it. Submission is never retried.
package placement
