// Package segments provides the interval algebra shared by binarization and
// short-segment filtering: sort-merge of overlapping spans, gap computation,
// exact-match removal, and duration thresholds.
//
// All operations return fresh slices; a segment set is never mutated after
// construction. After Merge, no two intervals overlap or touch and the set
// is sorted by ascending start time.
package segments
