// Package urls holds the documentation links printed by the CLI.
//
//	fmt.Printf("See: %s\n", urls.GeneratorBinary)
package urls
