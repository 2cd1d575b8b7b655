// Package runtime is the sequencing core of accelerate.
//
// An Engine reads the cursor from a driver, clamps the requested target to the motion
// catalog and walks the cursor there one motion at a time. Whatever happens, the cursor
// reached is recorded before the call returns, so the backend always reflects real
// progress and the next call resumes from it.
//
// Calls on one Engine are serialized; a ports.Locker extends that to other processes.
package runtime
