/*
Lua Obfuscator Tool (Entry Point)

This tool parses Lua source files, applies layered obfuscation passes over
the syntax tree and the generated text, and emits functionally equivalent
but hard-to-read Lua.
*/
package main

import (
	"github.com/whit3rabbit/luamixer/cmd/go-lua-obfuscator/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
