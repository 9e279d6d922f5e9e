// Command forgeloop drives the autonomous feature-implementation loop: a
// single-process
// scheduler that batches pending features, invokes a coding agent against
// each batch, and reconciles claimed completions against verified state.
package main

func main() {
	Execute()
}
