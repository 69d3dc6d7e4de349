// Package rules implements the driving and rest time arithmetic of the EU
// driving time regulation over a minute-granularity activity timeline.
//
// Every function is pure: the timeline, driver slot and reference instant are
// supplied by the caller and nothing reads the wall clock. Remaining
// quantities are clamped to zero.
package rules
