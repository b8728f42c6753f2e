// Command ondo is a thin admin CLI over the reference layer in
// pkg/ondo: every subcommand opens a badgerstore.Store, plans an
// operation with a reference type, applies the resulting effects, and
// prints the result. It never bypasses the reference layer to poke
// the store directly (see DESIGN.md).
package main

func main() {
	Execute()
}
