/*
Package ports defines the driven ports (interfaces) of the accelerate engine.

These interfaces decouple the sequencing logic from concrete backends, so the same engine
can move a SQLite database, a Redis instance or an in-memory fake.

# Key Interfaces

  - Driver: reads and records the cursor and executes single motion steps.
  - Initializer: optional one-time setup of the driver's bookkeeping.
  - Locker: cross-process lock used to serialize runs against a shared backend.
  - KeepAliveLocker: a Locker that renews held locks and reports a lost one.
  - Accelerator: the engine surface consumed by the HTTP and CLI adapters.
*/
package ports
