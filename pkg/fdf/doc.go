/*
Package fdf edits the named blocks of a solver input file.

An input file is handled as a slice of lines. A named block is the region
between a line starting it and the first following line containing
"%endblock NAME":

	%block ExternalElectricField
	    0.000000 0.000000 0.100000 V/Ang
	%endblock ExternalElectricField

Two editors are provided. Replace is the two-phase locate-then-splice edit
used on the user's base input; it uncomments a commented-out block and
inserts a missing one near the top of the file. Rewrite is the single
linear pass used to chain one run's output into the next run's input; it
substitutes every requested block in one scan.

Nothing in this package touches disk except ReadLines and WriteLines.
*/
package fdf
