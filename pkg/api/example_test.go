package api_test

import (
	"fmt"
	"log"

	"github.com/whit3rabbit/luamixer/pkg/api"
)

// Example shows basic usage of the Lua obfuscator library.
func Example() {
	// Obfuscate some Lua code with default options.
	_, err := api.Obfuscate(`print("Hello World")`, nil)
	if err != nil {
		log.Fatalf("Failed to obfuscate code: %v", err)
	}

	fmt.Println("Lua code was successfully obfuscated")

	// Output: Lua code was successfully obfuscated
}

// Example_customOptions demonstrates tuning individual techniques instead of
// relying on the protection level presets.
func Example_customOptions() {
	opts := api.Options{
		ProtectionLevel: 0,
		MangleNames:     api.Bool(true),
		Seed:            42,
	}

	res := api.ObfuscateWithResult("local user = 1\nlocal host = 2", &opts)
	if !res.Success {
		log.Fatalf("Failed to obfuscate code: %v", res.Err)
	}

	fmt.Printf("renamed %d identifiers\n", res.Summary.Counts.NamesMangled)

	// Output: renamed 2 identifiers
}
