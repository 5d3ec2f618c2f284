/*

Process of legalization

Program Text ->
	parse ->
Instruction List (ir) ->
	KILP peephole (fragment profile) ->
	local rewrite walk (alu) ->
Native Instruction List (ir) ->
	verify ->
	format ->
Program Text

Native Instruction List (ir) ->
	eval ->
Register Values

*/
package compiler
