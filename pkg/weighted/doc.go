/*
Package weighted provides values paired with a normalized probability weight.

A collection of Weighted items can be ordered by weight (descending) and sampled
with a weighted-random draw, where index i is picked with probability
w_i / sum(w). Draws walk the cumulative sum in collection order, so equal
weights resolve to the earliest item.
*/
package weighted
