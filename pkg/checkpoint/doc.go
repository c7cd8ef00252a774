/*
Package checkpoint orchestrates access to stored sweep checkpoints.

The Manager serializes reads and writes per sweep ID inside one process and,
when a DistributedLocker is configured, lets a running sweep hold a
cross-process lock so that a second fieldsweep process cannot advance the
same sweep.
*/
package checkpoint
