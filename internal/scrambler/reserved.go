package scrambler

// Reserved names are never renamed: Lua keywords plus the standard-library
// root names a script may reference as free globals. The set is a process-wide
// constant; renaming any of these would break the program's binding to the
// runtime environment.

var reservedKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

var reservedGlobals = map[string]bool{
	// Base library
	"print": true, "type": true, "tostring": true, "tonumber": true,
	"pairs": true, "ipairs": true, "next": true, "select": true,
	"rawget": true, "rawset": true, "rawequal": true, "rawlen": true,
	"setmetatable": true, "getmetatable": true, "setfenv": true,
	"getfenv": true, "pcall": true, "xpcall": true, "error": true,
	"assert": true, "unpack": true, "require": true, "collectgarbage": true,
	"dofile": true, "load": true, "loadstring": true, "loadfile": true,
	"module": true,

	// Library tables
	"string": true, "table": true, "math": true, "io": true, "os": true,
	"debug": true, "coroutine": true, "package": true, "bit32": true,
	"utf8": true,

	// Environment names
	"_G": true, "_ENV": true, "_VERSION": true, "arg": true, "self": true,
}

// IsReserved reports whether name must never be renamed.
func IsReserved(name string) bool {
	return reservedKeywords[name] || reservedGlobals[name]
}

// IsKeyword reports whether name is a Lua language keyword.
func IsKeyword(name string) bool {
	return reservedKeywords[name]
}
