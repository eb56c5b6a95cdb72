// Package jsonl provides a line source speaking JSON Lines, for programs that
// drive a REPL instead of a person.
//
// Every input line is one of:
//
//	"greet Ada"              a JSON string
//	{"line": "greet Ada"}    an object carrying the line
//	{"signal": "interrupt"}  an interrupt; "eof" ends the input
//	greet Ada                anything else is taken as raw text
//
// Every output line is an Event object, {"type":"prompt"|"output","text":...}.
package jsonl
