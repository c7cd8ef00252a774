/*
Package domain contains the core models of a field sweep.

It defines the values the pipeline moves around: field vectors and the axes
that generate them, the persisted checkpoint, the geometry harvested from a
solver log and the status of a running sweep. This package is kept pure and
free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - FieldVector: one point of the 3-D parameter space, in V/Ang.
  - SweepPoint: a FieldVector bound to its index and run directory name.
  - Checkpoint: the durable record that lets an interrupted sweep resume.
  - GeometryResult: lattice vectors and coordinates extracted from a log.
  - Snapshot: what the interactive surfaces see of a running sweep.
*/
package domain
