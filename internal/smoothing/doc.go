// Package smoothing reconstructs a dense frame-level sequence from
// coarse-grained sliding-window predictions.
//
// Upstream inference scores one window every shift interval; this package
// inverts that scheme, combining the windows that span each output frame by
// mean or median, and guards against window/shift/overlap geometries that
// cannot advance.
package smoothing
