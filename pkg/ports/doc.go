/*
Package ports defines the driven ports (interfaces) of the sweep pipeline.

These interfaces decouple the pipeline from external implementations, allowing
it to work with various checkpoint backends, solvers and operator channels.

# Key Interfaces

  - CheckpointStore: persists and loads the sweep Checkpoint.
  - AutostartMarker: the presence-only flag that resumes a sweep without asking.
  - Solver: runs the external solver in a point directory.
  - InputProvider: obtains a replacement input when a point cannot be chained.
  - Ledger: records every solver attempt.
  - DistributedLocker: guarantees a single writer per sweep.
*/
package ports
