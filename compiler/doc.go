/*

Process of compilation

Program Text ->
	parse ->
Instruction Sequence (ir) ->
	optimize ->
Finalized Instruction Sequence ->
	interp | list | back ->
Execution | Listing Text | Generated Code (bytecode, C, Go)

The optimizer is optional: a freshly parsed sequence already carries valid
jump targets and runs as is.

*/
package compiler
