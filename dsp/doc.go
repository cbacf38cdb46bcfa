// Package dsp is the spectrum-analysis collaborator consumed by the
// demo application. The handoff protocol moves opaque frames; only this
// package interprets them, behind the Analyzer interface, so a
// fixed-point hardware FFT can replace the reference implementation
// without touching the protocol or the app wiring.
package dsp
