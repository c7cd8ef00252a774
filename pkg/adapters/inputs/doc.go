/*
Package inputs implements the operator channels a paused sweep can be
resumed through.

Each provider satisfies ports.InputProvider: it blocks until the operator
supplies the path of a corrected input file, declines with
domain.ErrInputDeclined, or the context is canceled. Race combines several
providers so that whichever channel answers first wins.
*/
package inputs
