/*
Package domain contains the core types of the accelerate engine.

It is kept pure and free of I/O so that the runtime, drivers and catalog can share it
without import cycles.

# Key Entities

  - Operation: the closed Forward/Backward pair, carrying a cursor unit and a selector name.
  - Motion: one reversible unit of change with an "add" and a "sub" body.
  - Step: one motion half handed to a driver.
  - LifecycleHooks: optional observers notified as a run progresses.
*/
package domain
