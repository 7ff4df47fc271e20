// Package classify applies the threshold rules that decide whether a
// reading is fatal.
//
// Rules are evaluated in fixed priority order and the first match wins:
// heart rate spike, then oxygen drop, then fever. A reading breaching
// several thresholds at once reports only the highest-priority cause.
// Threshold values are configurable; the rule order is not.
package classify
